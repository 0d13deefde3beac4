package sttmgen

import (
	"sort"
	"strings"
)

/*

The validation engine is a single pass over the grouped rows plus one pass
against the config matrix. Every check appends to the report; nothing here
stops generation. The caller decides whether error findings abort the
downstream deploy, warnings never do.

Checks are grouped the way the findings read: workbook shape, per-unit
structure, stage-specific rules, then the matrix cross-checks.
*/

// requiredColumns are the mapping-sheet headers the core cannot work
// without. The workbook reader records which headers it saw; when one of
// these is missing the row-level checks are skipped entirely.
var requiredColumns = []string{"TargetTable", "TargetColumn", "PipelineStage"}

// ValidateMapping runs the structural and stage checks over the mapping
// rows. headers is the set of column names present in the source sheet
// (nil means the rows were built programmatically and the shape check is
// skipped).
func ValidateMapping(rows []MappingRow, headers map[string]bool, rep *Report) {
	if headers != nil {
		for _, req := range requiredColumns {
			if !headers[req] {
				rep.Errorf("", "Missing required column in mapping: %s", req)
				return
			}
		}
	}

	for _, r := range rows {
		if r.TargetTable == "" {
			rep.Errorf("", "Found row with blank TargetTable.")
		}
	}

	for _, u := range groupUnits(rows) {
		rep.Units = append(rep.Units, u.Table)
		validateUnit(u, rep)
	}
}

func validateUnit(u *Unit, rep *Report) {
	name := u.Table

	var tgtCols []string
	for _, r := range u.Rows {
		if r.TargetColumn != "" {
			tgtCols = append(tgtCols, r.TargetColumn)
		}
	}
	if len(tgtCols) == 0 {
		rep.Errorf(name, "[%s] has no TargetColumn entries.", name)
	}

	// duplicate target columns, one finding per duplicated value
	counts := make(map[string]int)
	for _, c := range tgtCols {
		counts[c]++
	}
	for _, c := range uniqueInOrder(tgtCols) {
		if counts[c] > 1 {
			rep.Errorf(name, "[%s] duplicate TargetColumn: %s", name, c)
		}
	}

	// primary keys
	var pkCols []string
	for _, r := range u.Rows {
		if !r.IsPK() {
			continue
		}
		if r.TargetColumn == "" {
			rep.Errorf(name, "[%s] primary-key mark on a row without a TargetColumn.", name)
			continue
		}
		pkCols = append(pkCols, r.TargetColumn)
	}
	if len(pkCols) != len(uniqueInOrder(pkCols)) {
		rep.Warnf(name, "[%s] duplicate PK marks on: %s", name, strings.Join(pkCols, ", "))
	}

	// driving table
	var sources []string
	for _, r := range u.Rows {
		if r.SourcePrimaryTable != "" {
			sources = append(sources, r.SourcePrimaryTable)
		}
	}
	if len(sources) == 0 {
		rep.Errorf(name, "[%s] missing SourcePrimaryTable (at least one row must specify it).", name)
	} else if u.Stage == StageView {
		if distinct := uniqueInOrder(sources); len(distinct) > 1 {
			rep.Warnf(name, "[%s] VIEW uses multiple SourcePrimaryTable values: %s", name, strings.Join(distinct, ", "))
		}
	}

	if u.Stage == StageView {
		validateViewUnit(u, rep)
	} else {
		validateTableUnit(u, rep)
	}

	// at most one join is honored; naming the dropped ones beats losing
	// them silently
	joinRows := 0
	for _, r := range u.Rows {
		if r.JoinTable != "" && r.JoinCondition != "" {
			joinRows++
		}
	}
	if joinRows > 1 {
		rep.Warnf(name, "[%s] declares %d joins; only the first is honored, the rest are ignored.", name, joinRows)
	}
}

func validateViewUnit(u *Unit, rep *Report) {
	name := u.Table
	for i, r := range u.Rows {
		rowNum := i + 1
		mf := strings.ToUpper(r.MessageFormat)
		hasExplicit := r.ExprOverride != "" || r.SourceTransformExpr != ""

		if mf != "" && mf != "JSON" && mf != "CSV" {
			rep.Errorf(name, "[%s] row#%d invalid MessageFormat: %s", name, rowNum, mf)
		}
		if mf == "JSON" {
			key := r.SourceField
			if key == "" {
				key = r.FieldSelector
			}
			if !hasExplicit && key == "" {
				rep.Errorf(name, "[%s] row#%d JSON view missing key (SourceField or FieldSelector).", name, rowNum)
			}
			if strings.HasPrefix(key, "$") {
				rep.Errorf(name, "[%s] row#%d JSON key must not start with '$'.", name, rowNum)
			}
		}
		if mf == "CSV" && !hasExplicit && r.FieldSelector != "" {
			if !digitsOnly.MatchString(r.FieldSelector) {
				rep.Errorf(name, "[%s] row#%d CSV FieldSelector must be numeric when provided. Got: %s", name, rowNum, r.FieldSelector)
			} else if _, ok := csvIndex(r.FieldSelector); !ok {
				rep.Errorf(name, "[%s] row#%d CSV FieldSelector out of range: %s", name, rowNum, r.FieldSelector)
			}
		}
	}

	// filter shape: only the first PK row's filter is honored
	pkFilters := 0
	for _, r := range u.Rows {
		if r.FilterPredicate == "" {
			continue
		}
		if !r.IsPK() {
			rep.Warnf(name, "[%s] FilterPredicate on non-PK row (column %s) is ignored for views.", name, r.TargetColumn)
			continue
		}
		pkFilters++
		if pkFilters == 1 && hasLeadingKeyword(r.FilterPredicate) {
			rep.Warnf(name, "[%s] FilterPredicate should be condition only; drop leading WHERE/AND/OR.", name)
		}
	}
	if pkFilters > 1 {
		rep.Warnf(name, "[%s] %d PK rows carry a FilterPredicate; only the first is honored.", name, pkFilters)
	}
}

func validateTableUnit(u *Unit, rep *Report) {
	name := u.Table
	for _, r := range u.Rows {
		if r.ExprOverride != "" && r.SourceTransformExpr != "" {
			rep.Warnf(name, "[%s] column %s has both ExprOverride and SourceTransformExpr; the override wins.", name, r.TargetColumn)
		}
	}

	hasJoinTable, hasJoinCond := false, false
	for _, r := range u.Rows {
		if r.JoinTable != "" {
			hasJoinTable = true
		}
		if r.JoinCondition != "" {
			hasJoinCond = true
		}
	}
	if hasJoinTable && !hasJoinCond {
		rep.Warnf(name, "[%s] JoinTable specified but JoinCondition missing.", name)
	}
	if hasJoinCond && !hasJoinTable {
		rep.Errorf(name, "[%s] JoinCondition provided but JoinTable empty.", name)
	}
}

// xrefPrefix marks cross-reference tables, which must resolve an upsert
// changelog mode from the matrix.
const (
	xrefPrefix       = "XREF_"
	changelogModeKey = "changelog.mode"
	upsertMode       = "upsert"
)

// ValidateAgainstMatrix runs the cross-checks between the mapping's
// generation units and the Config_TableMatrix grid.
func ValidateAgainstMatrix(rows []MappingRow, matrix *ConfigMatrix, rep *Report) {
	tables := make(map[string]bool)
	for _, r := range rows {
		if r.TargetTable != "" {
			tables[r.TargetTable] = true
		}
	}

	if matrix == nil || (len(matrix.Keys) == 0 && len(matrix.Tables) == 0) {
		rep.Errorf("", "Config_TableMatrix sheet missing or empty.")
		return
	}

	sorted := make([]string, 0, len(tables))
	for t := range tables {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	for _, t := range sorted {
		props := matrix.Resolve(t, t)
		if len(props) == 0 {
			rep.Errorf(t, "[Config_TableMatrix] Missing per-table properties for mapping TargetTable '%s'.", t)
		}
		if strings.HasPrefix(strings.ToUpper(t), xrefPrefix) {
			cm := strings.ToLower(strings.TrimSpace(optionValue(props, changelogModeKey)))
			if cm != upsertMode {
				if cm == "" {
					cm = "missing"
				}
				rep.Errorf(t, "[Config_TableMatrix] XREF table '%s' must set %s=%s (found '%s').", t, changelogModeKey, upsertMode, cm)
			}
		}
	}

	for _, col := range matrix.Tables {
		if !tables[col] {
			rep.Warnf("", "[Config_TableMatrix] Column '%s' not found in mapping TargetTable list (assuming external/pre-existing).", col)
		}
	}

	for _, col := range matrix.Tables {
		if len(matrix.DuplicateKeys(col)) > 0 {
			rep.Warnf("", "[Config_TableMatrix] Duplicate keys detected for table column '%s' (last value will win).", col)
		}
	}
}

// uniqueInOrder keeps the first occurrence of each value.
func uniqueInOrder(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
