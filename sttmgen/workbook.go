package sttmgen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names the reader recognizes, in lookup order for the mapping.
const (
	SheetMapping    = "STTM_Mapping"
	SheetMappingAlt = "STTM"
	SheetMatrix     = "Config_TableMatrix"
	SheetLegacy     = "Config"
)

/*

A Workbook is the normalized tabular input the compiler consumes: the
mapping rows, the set of mapping headers that were actually present, the
config matrix (nil when the workbook has none) and the flat key/value
settings of the legacy Config sheet.

Reading is deliberately forgiving — unknown sheets and columns are
ignored, malformed cells come through as empty strings — because the
validation engine, not the reader, is where mapping mistakes get
reported.
*/
type Workbook struct {
	Rows     []MappingRow
	Headers  map[string]bool
	Matrix   *ConfigMatrix
	Settings map[string]string
}

// canonicalHeaders maps case/spacing-insensitive header forms to the
// MappingRow field they feed.
var canonicalHeaders = map[string]string{
	"targettable":         "TargetTable",
	"targetcolumn":        "TargetColumn",
	"targetdatatype":      "TargetDataType",
	"pipelinestage":       "PipelineStage",
	"istargetpk":          "IsTargetPK",
	"sourceprimarytable":  "SourcePrimaryTable",
	"sourceprimaryalias":  "SourcePrimaryAlias",
	"sourcefield":         "SourceField",
	"fieldselector":       "FieldSelector",
	"messageformat":       "MessageFormat",
	"exproverride":        "ExprOverride",
	"sourcetransformexpr": "SourceTransformExpr",
	"filterpredicate":     "FilterPredicate",
	"jointable":           "JoinTable",
	"joinalias":           "JoinAlias",
	"joincondition":       "JoinCondition",
	"jointype":            "JoinType",
}

func canonicalHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(h))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	return canonicalHeaders[key]
}

// ReadWorkbook reads a .xlsx workbook or a .csv mapping export.
func ReadWorkbook(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".csv":
		return readCSV(path)
	}
	return nil, fmt.Errorf("unsupported workbook format '%s' (want .xlsx or .csv)", filepath.Ext(path))
}

func readXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook '%s': %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook '%s' has no sheets", path)
	}

	mappingSheet := sheets[0]
	if hasSheet(sheets, SheetMapping) {
		mappingSheet = SheetMapping
	} else if hasSheet(sheets, SheetMappingAlt) {
		mappingSheet = SheetMappingAlt
	}

	grid, err := f.GetRows(mappingSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", mappingSheet, err)
	}

	wb := &Workbook{Settings: make(map[string]string)}
	wb.Rows, wb.Headers = parseMappingGrid(grid)

	if hasSheet(sheets, SheetMatrix) {
		mgrid, err := f.GetRows(SheetMatrix)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet '%s': %w", SheetMatrix, err)
		}
		wb.Matrix = parseMatrixGrid(mgrid)
	}

	if hasSheet(sheets, SheetLegacy) {
		cgrid, err := f.GetRows(SheetLegacy)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet '%s': %w", SheetLegacy, err)
		}
		wb.Settings = parseSettingsGrid(cgrid)
	}

	return wb, nil
}

func readCSV(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file '%s': %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	grid, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", path, err)
	}

	wb := &Workbook{Settings: make(map[string]string)}
	wb.Rows, wb.Headers = parseMappingGrid(grid)
	return wb, nil
}

// parseMappingGrid turns a header row plus data rows into MappingRows.
// Unrecognized columns are skipped; short rows are padded with empties.
func parseMappingGrid(grid [][]string) ([]MappingRow, map[string]bool) {
	headers := make(map[string]bool)
	if len(grid) == 0 {
		return nil, headers
	}

	fieldByCol := make(map[int]string)
	for i, h := range grid[0] {
		if field := canonicalHeader(h); field != "" {
			fieldByCol[i] = field
			headers[field] = true
		}
	}

	var rows []MappingRow
	for _, cells := range grid[1:] {
		var r MappingRow
		empty := true
		for i, field := range fieldByCol {
			val := ""
			if i < len(cells) {
				val = normalizeCell(cells[i])
			}
			if val != "" {
				empty = false
			}
			setRowField(&r, field, val)
		}
		if !empty {
			rows = append(rows, r)
		}
	}
	return rows, headers
}

func setRowField(r *MappingRow, field, val string) {
	switch field {
	case "TargetTable":
		r.TargetTable = val
	case "TargetColumn":
		r.TargetColumn = val
	case "TargetDataType":
		r.TargetDataType = val
	case "PipelineStage":
		r.PipelineStage = val
	case "IsTargetPK":
		r.IsTargetPK = val
	case "SourcePrimaryTable":
		r.SourcePrimaryTable = val
	case "SourcePrimaryAlias":
		r.SourcePrimaryAlias = val
	case "SourceField":
		r.SourceField = val
	case "FieldSelector":
		r.FieldSelector = val
	case "MessageFormat":
		r.MessageFormat = val
	case "ExprOverride":
		r.ExprOverride = val
	case "SourceTransformExpr":
		r.SourceTransformExpr = val
	case "FilterPredicate":
		r.FilterPredicate = val
	case "JoinTable":
		r.JoinTable = val
	case "JoinAlias":
		r.JoinAlias = val
	case "JoinCondition":
		r.JoinCondition = val
	case "JoinType":
		r.JoinType = val
	}
}

// parseMatrixGrid reads the key × table grid. The key column is matched
// case-insensitively; a grid without one comes back empty and the
// validator reports it.
func parseMatrixGrid(grid [][]string) *ConfigMatrix {
	if len(grid) == 0 {
		return NewConfigMatrix(nil)
	}

	keyCol := -1
	var tables []string
	tableByCol := make(map[int]string)
	for i, h := range grid[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if keyCol < 0 && strings.EqualFold(name, "Key") {
			keyCol = i
			continue
		}
		tables = append(tables, name)
		tableByCol[i] = name
	}
	if keyCol < 0 {
		return NewConfigMatrix(nil)
	}

	m := NewConfigMatrix(tables)
	for _, cells := range grid[1:] {
		if keyCol >= len(cells) {
			continue
		}
		key := strings.TrimSpace(cells[keyCol])
		if key == "" {
			continue
		}
		for i, table := range tableByCol {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			m.Set(key, table, val)
		}
	}
	return m
}

// parseSettingsGrid reads the legacy Config sheet: first column keys,
// second column values, keys lowercased.
func parseSettingsGrid(grid [][]string) map[string]string {
	settings := make(map[string]string)
	for _, cells := range grid {
		if len(cells) < 1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cells[0]))
		if key == "" || key == "key" {
			continue
		}
		val := ""
		if len(cells) > 1 {
			val = normalizeCell(cells[1])
		}
		settings[key] = val
	}
	return settings
}

func hasSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}
