// Package loader turns ledger, price and sector files into the raw tables
// the report engine consumes. Files may be local paths or http(s) URLs.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"nepsereport/pkg/nepsereport"
)

// TableSpec describes how to read one table out of a file.
type TableSpec struct {
	// Name labels the table in error messages.
	Name string
	// Sheet selects the workbook sheet. When it is missing the first
	// sheet is used.
	Sheet string
	// HeaderRow is the 1-based row holding column headings. Rows above it
	// are ignored. Zero finds the first row with a Symbol heading.
	HeaderRow int
	// JSONPath selects the array of records in a JSON snapshot.
	JSONPath string
	// Columns names the headings of a fixed-layout workbook sheet. When
	// the named sheet lacks them but has exactly as many headings, they
	// are applied by position.
	Columns []string
}

// Options controls Loader construction.
type Options struct {
	Logger  *slog.Logger
	Fetcher *Fetcher
}

// Loader reads tables from local files and remote URLs.
type Loader struct {
	logger  *slog.Logger
	fetcher *Fetcher
}

// New creates a Loader.
func New(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(FetcherOptions{Logger: logger})
	}
	return &Loader{logger: logger, fetcher: fetcher}
}

// Document is the raw content of one input file.
type Document struct {
	Filename string
	Data     []byte
}

// Open reads ref, which is either a local path or an http(s) URL.
func (l *Loader) Open(ctx context.Context, ref string) (Document, error) {
	if ref == "" {
		return Document{}, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, "no input file given")
	}
	if isRemote(ref) {
		data, err := l.fetcher.Fetch(ctx, ref)
		if err != nil {
			return Document{}, err
		}
		return Document{Filename: remoteFilename(ref), Data: data}, nil
	}
	data, err := os.ReadFile(filepath.Clean(ref))
	if err != nil {
		return Document{}, nepsereport.WrapError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("read %s", ref), err)
	}
	return Document{Filename: filepath.Base(ref), Data: data}, nil
}

// Load opens ref and reads one table from it.
func (l *Loader) Load(ctx context.Context, ref string, spec TableSpec) (nepsereport.Table, Document, error) {
	doc, err := l.Open(ctx, ref)
	if err != nil {
		return nepsereport.Table{}, Document{}, err
	}
	t, err := l.Read(doc, spec)
	return t, doc, err
}

// Read parses a table out of doc, choosing the reader by file extension.
func (l *Loader) Read(doc Document, spec TableSpec) (nepsereport.Table, error) {
	var (
		t   nepsereport.Table
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(doc.Filename)); ext {
	case ".csv", ".txt", "":
		t, err = readDelimited(bytes.NewReader(doc.Data), sniffDelimiter(doc.Data, ','), spec, l.logger)
	case ".tsv", ".tab":
		t, err = readDelimited(bytes.NewReader(doc.Data), '\t', spec, l.logger)
	case ".xlsx", ".xlsm":
		t, err = readWorkbook(bytes.NewReader(doc.Data), spec, l.logger)
	case ".json":
		t, err = readJSON(bytes.NewReader(doc.Data), spec)
	case ".xls":
		return t, nepsereport.NewError(nepsereport.ErrCodeUnsupported,
			fmt.Sprintf("%s: legacy .xls workbooks are not supported, save it as .xlsx", doc.Filename))
	default:
		return t, nepsereport.NewError(nepsereport.ErrCodeUnsupported,
			fmt.Sprintf("%s: unsupported file type %q", doc.Filename, ext))
	}
	if err != nil {
		return nepsereport.Table{}, err
	}
	if spec.Name != "" {
		t.Name = spec.Name
	}
	l.logger.Debug("table loaded", "file", doc.Filename, "table", t.Name, "columns", len(t.Header), "rows", len(t.Rows))
	return t, nil
}

// IsWorkbook reports whether ref names an Excel workbook.
func IsWorkbook(ref string) bool {
	switch strings.ToLower(path.Ext(stripQuery(ref))) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func remoteFilename(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return path.Base(stripQuery(ref))
	}
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// headerAndRows splits raw records at the configured header row.
func headerAndRows(records [][]string, headerRow int) ([]string, [][]string, error) {
	if headerRow <= 0 {
		headerRow = detectHeaderRow(records)
	}
	if len(records) < headerRow {
		return nil, nil, nepsereport.NewError(nepsereport.ErrCodeSchema,
			fmt.Sprintf("no header at row %d: file has %d row(s)", headerRow, len(records)))
	}
	header := records[headerRow-1]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return header, records[headerRow:], nil
}

// headerScanRows bounds the search for a heading row.
const headerScanRows = 20

// detectHeaderRow returns the first row, 1-based, with a Symbol cell. It
// falls back to the first row.
func detectHeaderRow(records [][]string) int {
	for i, rec := range records {
		if i == headerScanRows {
			break
		}
		for _, c := range rec {
			c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
			if strings.EqualFold(c, nepsereport.ColSymbol) {
				return i + 1
			}
		}
	}
	return 1
}
