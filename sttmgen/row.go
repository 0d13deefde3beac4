package sttmgen

import "strings"

/*

A MappingRow is one row of the STTM mapping sheet. Every slot is kept as a
trimmed string, exactly as it came out of the workbook cell: the mapping
sheet is authored by hand and the compiler's job is to be predictable about
what it does with each cell, not to be clever about coercing it.

The expr slot is derived during generation (see chooseExpr) and is never
written back to the source rows.
*/
type MappingRow struct {
	TargetTable    string
	TargetColumn   string
	TargetDataType string
	PipelineStage  string
	IsTargetPK     string

	SourcePrimaryTable string
	SourcePrimaryAlias string

	SourceField   string
	FieldSelector string
	MessageFormat string

	ExprOverride        string
	SourceTransformExpr string

	FilterPredicate string

	JoinTable     string
	JoinAlias     string
	JoinCondition string
	JoinType      string

	expr string
}

// Pipeline stages, in section order. Anything unrecognized falls back to
// StageFGAC for generation purposes, but sorts after the known stages.
type Stage int

const (
	StageView Stage = iota
	StageXref
	StageFGAC
)

func (s Stage) String() string {
	switch s {
	case StageView:
		return "VIEW"
	case StageXref:
		return "XREF"
	default:
		return "FGAC"
	}
}

func ParseStage(s string) Stage {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VIEW":
		return StageView
	case "XREF":
		return StageXref
	default:
		return StageFGAC
	}
}

// stageRank orders rows for output: VIEW, XREF, FGAC, then everything else.
// Unlike ParseStage this does not fold unknown values into FGAC, so typos
// in PipelineStage sort last instead of shuffling into the FGAC section.
func stageRank(raw string) int {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "VIEW":
		return 0
	case "XREF":
		return 1
	case "FGAC":
		return 2
	default:
		return 99
	}
}

func (r *MappingRow) IsPK() bool {
	return strings.ToUpper(strings.TrimSpace(r.IsTargetPK)) == "Y"
}

// normalizeCell trims a raw cell value and maps the spreadsheet-export
// sentinels for "no value" to the empty string.
func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// Normalize returns a copy of the row with every field put through
// normalizeCell. Rows coming from the workbook reader are already clean;
// callers constructing rows programmatically go through this before
// handing them to Generate.
func (r MappingRow) Normalize() MappingRow {
	r.TargetTable = normalizeCell(r.TargetTable)
	r.TargetColumn = normalizeCell(r.TargetColumn)
	r.TargetDataType = normalizeCell(r.TargetDataType)
	r.PipelineStage = normalizeCell(r.PipelineStage)
	r.IsTargetPK = normalizeCell(r.IsTargetPK)
	r.SourcePrimaryTable = normalizeCell(r.SourcePrimaryTable)
	r.SourcePrimaryAlias = normalizeCell(r.SourcePrimaryAlias)
	r.SourceField = normalizeCell(r.SourceField)
	r.FieldSelector = normalizeCell(r.FieldSelector)
	r.MessageFormat = normalizeCell(r.MessageFormat)
	r.ExprOverride = normalizeCell(r.ExprOverride)
	r.SourceTransformExpr = normalizeCell(r.SourceTransformExpr)
	r.FilterPredicate = normalizeCell(r.FilterPredicate)
	r.JoinTable = normalizeCell(r.JoinTable)
	r.JoinAlias = normalizeCell(r.JoinAlias)
	r.JoinCondition = normalizeCell(r.JoinCondition)
	r.JoinType = normalizeCell(r.JoinType)
	return r
}

// NormalizeRows applies Normalize to a whole sheet, preserving order.
func NormalizeRows(rows []MappingRow) []MappingRow {
	out := make([]MappingRow, len(rows))
	for i, r := range rows {
		out[i] = r.Normalize()
	}
	return out
}

// qident wraps a bare identifier in backticks, leaving already-quoted names
// and inline subqueries alone.
func qident(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return s
	}
	if s[0] == '`' || s[0] == '(' {
		return s
	}
	return "`" + s + "`"
}
