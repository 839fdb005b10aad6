package loader

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/xuri/excelize/v2"

	"nepsereport/pkg/nepsereport"
)

// readWorkbook reads one sheet of an .xlsx or .xlsm workbook.
func readWorkbook(r io.Reader, spec TableSpec, logger *slog.Logger) (nepsereport.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nepsereport.Table{}, nepsereport.WrapError(nepsereport.ErrCodeParse, "open workbook", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("close workbook failed", "err", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nepsereport.Table{}, nepsereport.NewError(nepsereport.ErrCodeSchema, "workbook has no sheets")
	}
	sheet := spec.Sheet
	if sheet == "" || !slices.Contains(sheets, sheet) {
		if sheet != "" {
			logger.Warn("sheet not found, using first sheet", "want", sheet, "using", sheets[0], "sheets", sheets)
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nepsereport.Table{}, nepsereport.WrapError(nepsereport.ErrCodeParse, fmt.Sprintf("read sheet %q", sheet), err)
	}
	header, rows, err := headerAndRows(records, spec.HeaderRow)
	if err != nil {
		return nepsereport.Table{}, err
	}
	if len(spec.Columns) > 0 && sheet == spec.Sheet {
		if renamed, ok := positionalHeader(header, spec.Columns); ok {
			logger.Info("reading sheet by position", "sheet", sheet, "header", header, "columns", spec.Columns)
			header = renamed
		}
	}
	return nepsereport.Table{Name: spec.Name, Header: header, Rows: rows}, nil
}

// positionalHeader renames the non-empty headings in order. It reports
// false when every column is already present or the widths differ.
func positionalHeader(header, columns []string) ([]string, bool) {
	t := nepsereport.Table{Header: header}
	present := true
	for _, c := range columns {
		if t.Index(c) < 0 {
			present = false
			break
		}
	}
	if present {
		return header, false
	}
	var used []int
	for i, h := range header {
		if h != "" {
			used = append(used, i)
		}
	}
	if len(used) != len(columns) {
		return header, false
	}
	renamed := slices.Clone(header)
	for j, i := range used {
		renamed[i] = columns[j]
	}
	return renamed, true
}
