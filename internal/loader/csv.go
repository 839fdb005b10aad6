package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"nepsereport/pkg/nepsereport"
)

// sniffDelimiter picks tab when the first line is tab separated and has no
// instance of the fallback delimiter.
func sniffDelimiter(data []byte, fallback rune) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.ContainsRune(line, '\t') && !bytes.ContainsRune(line, fallback) {
		return '\t'
	}
	return fallback
}

// readDelimited reads a CSV or TSV table. Malformed lines and lines with
// more filled cells than the header has columns are skipped and logged.
func readDelimited(r io.Reader, comma rune, spec TableSpec, logger *slog.Logger) (nepsereport.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var records [][]string
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			logger.Warn("skipping malformed line", "table", spec.Name, "line", perr.Line, "err", perr.Err)
			continue
		}
		if err != nil {
			return nepsereport.Table{}, nepsereport.WrapError(nepsereport.ErrCodeParse, "read delimited file", err)
		}
		records = append(records, rec)
	}

	header, rows, err := headerAndRows(records, spec.HeaderRow)
	if err != nil {
		return nepsereport.Table{}, err
	}
	kept := rows[:0]
	for _, row := range rows {
		if overflows(row, len(header)) {
			skipped++
			continue
		}
		kept = append(kept, row)
	}
	if skipped > 0 {
		logger.Warn("skipped bad lines", "table", spec.Name, "count", skipped)
	}
	return nepsereport.Table{Name: spec.Name, Header: header, Rows: kept}, nil
}

func overflows(row []string, width int) bool {
	for i := width; i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			return true
		}
	}
	return false
}
