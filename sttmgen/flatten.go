package sttmgen

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

/*

The flattener turns one nested JSON document into tabular rows so that a
payload's extraction paths can be eyeballed next to the mapping sheet.

Nested object keys join with a configurable separator; arrays expand into
one row per element, inheriting the scalars of their parent scope and
cross-joining when a scope holds several arrays. A depth guard keeps a
hostile document from recursing away.
*/

type FlattenOptions struct {
	Joiner   string // key separator, default "."
	MaxDepth int    // 0 means the default guard
}

const defaultFlattenDepth = 32

// FlattenJSON flattens a decoded JSON value into rows of column -> value
// strings.
func FlattenJSON(doc any, opts FlattenOptions) ([]map[string]string, error) {
	if opts.Joiner == "" {
		opts.Joiner = "."
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultFlattenDepth
	}
	return flattenValue(doc, "", 0, opts)
}

// FlattenFile reads a JSON document and writes it as CSV to w.
func FlattenFile(path string, opts FlattenOptions, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse JSON in '%s': %w", path, err)
	}

	rows, err := FlattenJSON(doc, opts)
	if err != nil {
		return err
	}
	return WriteFlattenedCSV(rows, w)
}

// WriteFlattenedCSV writes the flattened rows with a stable header: the
// union of all columns, sorted.
func WriteFlattenedCSV(rows []map[string]string, w io.Writer) error {
	colSet := make(map[string]bool)
	for _, row := range rows {
		for c := range row {
			colSet[c] = true
		}
	}
	cols := make([]string, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			record[i] = row[c]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func flattenValue(v any, prefix string, depth int, opts FlattenOptions) ([]map[string]string, error) {
	if depth > opts.MaxDepth {
		return nil, fmt.Errorf("document exceeds max depth %d at '%s'", opts.MaxDepth, prefix)
	}

	switch val := v.(type) {
	case map[string]any:
		return flattenObject(val, prefix, depth, opts)
	case []any:
		return flattenArray(val, prefix, depth, opts)
	default:
		key := prefix
		if key == "" {
			key = "value"
		}
		return []map[string]string{{key: scalarString(val)}}, nil
	}
}

// flattenObject merges the object's scalar fields into one base row, then
// cross-joins the expansions of every nested field. Keys are visited in
// sorted order so output is deterministic.
func flattenObject(obj map[string]any, prefix string, depth int, opts FlattenOptions) ([]map[string]string, error) {
	base := make(map[string]string)
	var nestedKeys []string
	for k, v := range obj {
		switch v.(type) {
		case map[string]any, []any:
			nestedKeys = append(nestedKeys, k)
		default:
			base[joinKey(prefix, k, opts.Joiner)] = scalarString(v)
		}
	}
	sort.Strings(nestedKeys)

	rows := []map[string]string{base}
	for _, k := range nestedKeys {
		childRows, err := flattenValue(obj[k], joinKey(prefix, k, opts.Joiner), depth+1, opts)
		if err != nil {
			return nil, err
		}
		rows = crossJoin(rows, childRows)
	}
	return rows, nil
}

func flattenArray(arr []any, prefix string, depth int, opts FlattenOptions) ([]map[string]string, error) {
	if len(arr) == 0 {
		return []map[string]string{{}}, nil
	}
	var rows []map[string]string
	for _, elem := range arr {
		elemRows, err := flattenValue(elem, prefix, depth+1, opts)
		if err != nil {
			return nil, err
		}
		rows = append(rows, elemRows...)
	}
	return rows, nil
}

func crossJoin(left, right []map[string]string) []map[string]string {
	out := make([]map[string]string, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			merged := make(map[string]string, len(l)+len(r))
			for k, v := range l {
				merged[k] = v
			}
			for k, v := range r {
				merged[k] = v
			}
			out = append(out, merged)
		}
	}
	return out
}

func joinKey(prefix, key, joiner string) string {
	if prefix == "" {
		return key
	}
	return prefix + joiner + key
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
