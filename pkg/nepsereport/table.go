package nepsereport

import "strings"

// Table is a raw tabular input as handed over by a loader: a header row
// and data rows of cell text. Rows may be shorter than the header.
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Columns returns the trimmed, non-blank header cells.
func (t Table) Columns() []string {
	cols := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if h = strings.TrimSpace(h); h != "" {
			cols = append(cols, h)
		}
	}
	return cols
}

// Index returns the position of the named column, or -1. An exact match on
// the trimmed header wins over a case-insensitive one.
func (t Table) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// FirstOf tries candidates in order and returns the first column found.
func (t Table) FirstOf(candidates ...string) (string, int, bool) {
	for _, c := range candidates {
		if i := t.Index(c); i >= 0 {
			return strings.TrimSpace(t.Header[i]), i, true
		}
	}
	return "", -1, false
}

// require resolves every named column or fails with a schema error that
// lists the columns actually present.
func (t Table) require(names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	var missing []string
	for _, n := range names {
		i := t.Index(n)
		if i < 0 {
			missing = append(missing, n)
			continue
		}
		idx[n] = i
	}
	if len(missing) > 0 {
		return nil, schemaError(t.label(), missing, t.Columns())
	}
	return idx, nil
}

func (t Table) label() string {
	if t.Name == "" {
		return "table"
	}
	return t.Name
}

// cell returns the trimmed text at column i, "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
