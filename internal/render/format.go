package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"nepsereport/pkg/nepsereport"
)

// Format is an output format for a rendered report.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatMsgPack  Format = "msgpack"
	FormatTerminal Format = "terminal"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mpk":
		return FormatMsgPack, nil
	case "term", "terminal", "tty":
		return FormatTerminal, nil
	}
	return "", nepsereport.NewError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("unknown output format %q", s))
}

// Extension returns the file extension for artifacts in this format.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	case FormatMsgPack:
		return ".msgpack"
	case FormatTerminal:
		return ".txt"
	default:
		return ".md"
	}
}

// ContentType returns the MIME type for this format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatMsgPack:
		return "application/msgpack"
	case FormatTerminal:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Options controls Render.
type Options struct {
	Markdown MarkdownOptions
	Terminal TerminalOptions
}

// Render produces the report in format f.
func Render(r *nepsereport.Report, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(r)
	case FormatMsgPack:
		return MsgPack(r)
	}
	md, err := Markdown(r, opts.Markdown)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatMarkdown:
		return []byte(md), nil
	case FormatHTML:
		return HTML(md, opts.Markdown.Title)
	case FormatTerminal:
		out, err := Terminal(md, opts.Terminal)
		return []byte(out), err
	}
	return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("unknown output format %q", f))
}

// JSON encodes the report with indentation.
func JSON(r *nepsereport.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// MsgPack encodes the report as MessagePack with the same field names and
// values as the JSON form.
func MsgPack(r *nepsereport.Report) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	out, err := msgpack.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encode msgpack: %w", err)
	}
	return out, nil
}
