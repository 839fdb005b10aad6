// Package render turns a report into markdown, HTML, terminal text, JSON
// or MessagePack.
package render

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"nepsereport/pkg/nepsereport"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates = mustSub(templateFS, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Section names a part of the markdown report.
type Section string

const (
	SectionHoldings   Section = "holdings"
	SectionSectors    Section = "sectors"
	SectionAllocation Section = "allocation"
	SectionRealized   Section = "realized"
	SectionQuality    Section = "quality"
)

// AllSections is the full report.
var AllSections = []Section{SectionHoldings, SectionSectors, SectionAllocation, SectionRealized, SectionQuality}

// MarkdownOptions holds configuration for rendering a report.
type MarkdownOptions struct {
	Title string
	// Sections lists the parts to include. Empty means all of them.
	Sections []Section
}

// DefaultTitle heads the report when no title is configured.
const DefaultTitle = "NEPSE Portfolio Report"

type reportView struct {
	Title  string
	Report *nepsereport.Report
}

// Markdown renders the report as GitHub flavored markdown.
func Markdown(r *nepsereport.Report, opts MarkdownOptions) (string, error) {
	if r == nil {
		return "", nepsereport.NewError(nepsereport.ErrCodeInvalidInput, "no report to render")
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	sections := opts.Sections
	if len(sections) == 0 {
		sections = AllSections
	}

	partials := map[string]string{
		"header": "header.md",
		"table":  "table.md",
	}
	for _, s := range AllSections {
		partials[string(s)] = ""
	}
	for _, s := range sections {
		if _, ok := partials[string(s)]; !ok {
			return "", nepsereport.NewError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("unknown report section %q", s))
		}
		partials[string(s)] = string(s) + ".md"
	}
	return renderTemplate("report", "report.md", partials, reportView{Title: title, Report: r}, funcsFor(r.Currency))
}

// renderTemplate renders a main template that depends on several partials.
// An empty partial file name yields an empty template.
func renderTemplate(name, mainFile string, partials map[string]string, data any, funcs template.FuncMap) (string, error) {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", mainFile, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", mainFile, err)
	}
	for partial, file := range partials {
		var content []byte
		if file != "" {
			if content, err = fs.ReadFile(templates, file); err != nil {
				return "", fmt.Errorf("read partial %q: %w", file, err)
			}
		}
		if _, err := tmpl.New(partial).Parse(string(content)); err != nil {
			return "", fmt.Errorf("parse partial %q for %q: %w", file, partial, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return collapseBlankLines(b.String()), nil
}

func funcsFor(currency string) template.FuncMap {
	return template.FuncMap{
		"money":   func(v any) string { return Money(v, currency) },
		"percent": percentText,
		"share":   func(a nepsereport.Amount) string { return nepsereport.FormatPercent(a.Decimal) },
		"bar":     bar,
		"row":     tableRow,
		"align":   tableAlign,
		"join":    strings.Join,
	}
}

// Money formats a value in the report currency with go-money, e.g.
// "₨1,234.50". A missing value renders blank.
func Money(v any, currency string) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case nepsereport.NullAmount:
		if !x.Valid {
			return ""
		}
		d = x.Value
	case nepsereport.Amount:
		d = x.Decimal
	case decimal.Decimal:
		d = x
	default:
		return fmt.Sprint(v)
	}
	if currency == "" || money.GetCurrency(currency) == nil {
		return nepsereport.FormatInteger(d)
	}
	// to get a never nil currency the Money constructor is needed
	cur := *money.New(0, currency).Currency()
	return cur.Formatter().Format(d.Shift(int32(cur.Fraction)).RoundBank(0).IntPart())
}

func percentText(n nepsereport.NullAmount) string {
	if !n.Valid {
		return ""
	}
	return "(" + nepsereport.FormatPercent(n.Value) + ")"
}

const barWidth = 30

func bar(share nepsereport.Amount) string {
	n := int(share.Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
	if n < 1 && share.IsPositive() {
		n = 1
	}
	return strings.Repeat("█", n)
}

func tableRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

// textColumns are left aligned, everything else is numeric.
var textColumns = map[string]bool{"Symbol": true, "Sector": true}

func tableAlign(columns []string) string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		if textColumns[c] {
			cells[i] = "---"
		} else {
			cells[i] = "---:"
		}
	}
	return "|" + strings.Join(cells, "|") + "|"
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s) + "\n"
}
