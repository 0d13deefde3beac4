package sttmgen

import (
	"fmt"
	"strings"
)

// dummySource keeps generation total when a unit declares no driving
// table; the validator reports the missing SourcePrimaryTable as an error.
const dummySource = "(VALUES(1)) t(dummy)"

// drivingSource returns "`table` alias" from the first row declaring a
// SourcePrimaryTable, or the one-row dummy fallback.
func drivingSource(rows []*MappingRow) string {
	for _, r := range rows {
		if r.SourcePrimaryTable == "" {
			continue
		}
		alias := r.SourcePrimaryAlias
		if alias == "" {
			alias = "t"
		}
		return fmt.Sprintf("%s %s", qident(r.SourcePrimaryTable), alias)
	}
	return dummySource
}

func buildViewSQL(emitted string, rows []*MappingRow, filter string) string {
	var selects []string
	for _, r := range rows {
		if r.TargetColumn == "" {
			continue
		}
		selects = append(selects, fmt.Sprintf("  %s AS %s", r.expr, r.TargetColumn))
	}
	where := ""
	if filter != "" {
		where = "\nWHERE " + filter
	}
	return fmt.Sprintf("CREATE VIEW %s AS\nSELECT\n%s\nFROM %s%s;",
		qident(emitted), strings.Join(selects, ",\n"), drivingSource(rows), where)
}

/*
buildTableDDL emits the CREATE TABLE for an XREF/FGAC unit.

Columns come from TargetColumn/TargetDataType pairs, deduplicated by name
with the first occurrence winning (the duplicate itself is an error
finding). Rows flagged IsTargetPK contribute to a NOT ENFORCED primary
key, and the resolved matrix options become the WITH(...) clause.
*/
func buildTableDDL(emitted string, rows []*MappingRow, props []TableOption) string {
	seen := make(map[string]bool)
	var colLines []string
	var pkCols []string

	for _, r := range rows {
		c := r.TargetColumn
		typ := r.TargetDataType
		if typ == "" {
			typ = defaultDataType
		}
		if c != "" && !seen[c] {
			colLines = append(colLines, fmt.Sprintf("  %s %s", c, typ))
			seen[c] = true
		}
		if c != "" && r.IsPK() && !contains(pkCols, c) {
			pkCols = append(pkCols, c)
		}
	}

	if len(pkCols) > 0 {
		colLines = append(colLines, fmt.Sprintf("  PRIMARY KEY (%s) NOT ENFORCED", strings.Join(pkCols, ", ")))
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", qident(emitted), strings.Join(colLines, ",\n"))
	if len(props) > 0 {
		var kv []string
		for _, p := range props {
			kv = append(kv, fmt.Sprintf("'%s' = '%s'", p.Key, p.Value))
		}
		ddl += fmt.Sprintf("\nWITH (\n  %s\n)", strings.Join(kv, ", "))
	}
	return ddl + ";"
}

func buildInsertSQL(emitted string, rows []*MappingRow, where string) string {
	var cols, selects []string
	for _, r := range rows {
		if r.TargetColumn == "" {
			continue
		}
		cols = append(cols, r.TargetColumn)
		selects = append(selects, fmt.Sprintf("  %s AS %s", r.expr, r.TargetColumn))
	}
	whereSQL := ""
	if where != "" {
		whereSQL = "\nWHERE " + where
	}
	return fmt.Sprintf("INSERT INTO %s (%s)\nSELECT\n%s\nFROM %s%s%s;",
		qident(emitted), strings.Join(cols, ", "), strings.Join(selects, ",\n"),
		drivingSource(rows), joinClause(rows), whereSQL)
}

// statementHeader prefixes every emitted statement so the consolidated
// file stays navigable.
func statementHeader(emitted string) string {
	return "-- >>> " + emitted + "\n"
}

// assembleSections concatenates the generated statements in the fixed
// order views, table definitions, then one EXECUTE STATEMENT SET holding
// all inserts (XREF before FGAC). Empty sections are skipped.
func assembleSections(views, ddls, xrefInserts, fgacInserts []string) string {
	var sections []string
	if len(views) > 0 {
		sections = append(sections, "-- ===== VIEWS =====\n"+strings.TrimSpace(strings.Join(views, "\n\n")))
	}
	if len(ddls) > 0 {
		sections = append(sections, "-- ===== TABLES =====\n"+strings.TrimSpace(strings.Join(ddls, "\n\n")))
	}
	if len(xrefInserts) > 0 || len(fgacInserts) > 0 {
		var parts []string
		if len(xrefInserts) > 0 {
			parts = append(parts, strings.TrimSpace(strings.Join(xrefInserts, "\n\n")))
		}
		if len(fgacInserts) > 0 {
			parts = append(parts, strings.TrimSpace(strings.Join(fgacInserts, "\n\n")))
		}
		set := "EXECUTE STATEMENT SET\nBEGIN\n\n" + strings.Join(parts, "\n\n") + "\n\nEND;"
		sections = append(sections, "-- ===== INSERT STATEMENT SET =====\n"+set)
	}
	return strings.TrimSpace(strings.Join(sections, "\n\n")) + "\n"
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
