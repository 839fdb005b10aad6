package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/PaesslerAG/jsonpath"

	"nepsereport/pkg/nepsereport"
)

// DefaultJSONPath selects a top-level array of records.
const DefaultJSONPath = "$"

// readJSON reads an array of flat objects selected by spec.JSONPath. The
// header is the sorted union of keys, with Symbol first.
func readJSON(r io.Reader, spec TableSpec) (nepsereport.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nepsereport.Table{}, nepsereport.WrapError(nepsereport.ErrCodeParse, "decode json", err)
	}

	expr := spec.JSONPath
	if expr == "" {
		expr = DefaultJSONPath
	}
	selected, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nepsereport.Table{}, nepsereport.WrapError(nepsereport.ErrCodeParse, fmt.Sprintf("evaluate %q", expr), err)
	}
	// A path can yield the array itself or a one-element list holding it.
	if list, ok := selected.([]any); ok && len(list) == 1 {
		if inner, ok := list[0].([]any); ok {
			selected = inner
		}
	}
	list, ok := selected.([]any)
	if !ok {
		return nepsereport.Table{}, nepsereport.NewError(nepsereport.ErrCodeSchema,
			fmt.Sprintf("%q does not select an array of records", expr))
	}

	records := make([]map[string]any, 0, len(list))
	keys := map[string]struct{}{}
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nepsereport.Table{}, nepsereport.NewError(nepsereport.ErrCodeSchema,
				fmt.Sprintf("record %d is %T, not an object", i+1, item))
		}
		for k := range obj {
			keys[k] = struct{}{}
		}
		records = append(records, obj)
	}

	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Slice(header, func(i, j int) bool {
		if (header[i] == nepsereport.ColSymbol) != (header[j] == nepsereport.ColSymbol) {
			return header[i] == nepsereport.ColSymbol
		}
		return header[i] < header[j]
	})

	rows := make([][]string, 0, len(records))
	for _, obj := range records {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = scalarText(obj[k])
		}
		rows = append(rows, row)
	}
	return nepsereport.Table{Name: spec.Name, Header: header, Rows: rows}, nil
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}
