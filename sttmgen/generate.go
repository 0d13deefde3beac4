package sttmgen

import "strings"

/*

Generate is the whole compiler: normalized mapping rows and the config
matrix in, consolidated SQL text and a findings report out. It holds no
state between invocations and does no I/O; the command layer reads the
workbook before calling it and writes the files after.

Validation runs first and in full, generation second; an invalid unit
still generates as long as it has a table name and at least one target
column, so both the SQL and the complete findings list come back from a
single pass over the workbook.
*/

type (
	// Options carries the per-run configuration, threaded explicitly
	// through every resolver so that two runs never share state.
	Options struct {
		// PayloadColumn is the raw source column holding the structured
		// payload that auto-extraction reads from.
		PayloadColumn string
		// CSVDelimiter splits delimited-text payloads.
		CSVDelimiter string
		// Rules selects the generation rule set.
		Rules RuleSet

		// Name affixes, honored by the legacy rule set only.
		ViewPrefix  string
		ViewSuffix  string
		TablePrefix string
		TableSuffix string

		// ExtraReservedWords extends the predicate rewriter's reserved
		// set from configuration.
		ExtraReservedWords []string
	}

	// Result is everything one generation run produces.
	Result struct {
		SQL    string
		Report *Report

		ViewCount   int
		TableCount  int
		InsertCount int

		// EmittedTables lists every emitted view/table name in output
		// order, for the run manifest.
		EmittedTables []string
	}
)

const (
	defaultPayloadColumn = "val"
	defaultCSVDelimiter  = ","
)

func (o Options) withDefaults() Options {
	if o.PayloadColumn == "" {
		o.PayloadColumn = defaultPayloadColumn
	}
	if o.CSVDelimiter == "" {
		o.CSVDelimiter = defaultCSVDelimiter
	}
	if o.Rules.Version == "" {
		o.Rules = RulesMatrix
	}
	return o
}

// Generate compiles mapping rows and the config matrix into consolidated
// SQL plus the validation report. headers is the set of column names seen
// in the source sheet, nil for programmatic callers.
func Generate(rows []MappingRow, headers map[string]bool, matrix *ConfigMatrix, opts Options) *Result {
	opts = opts.withDefaults()
	rows = NormalizeRows(rows)

	rep := NewReport()
	ValidateMapping(rows, headers, rep)
	if opts.Rules.UseMatrix {
		ValidateAgainstMatrix(rows, matrix, rep)
	}

	reserved := reservedSet(opts.ExtraReservedWords)

	var views, ddls, xrefInserts, fgacInserts []string
	result := &Result{Report: rep}

	for _, u := range groupUnits(rows) {
		isView := u.Stage == StageView
		emitted := opts.Rules.emittedName(u.Table, isView, opts)

		var autoIdx map[string]int
		if isView {
			autoIdx = allocateCSVIndexes(u.Rows)
		}
		for _, r := range u.Rows {
			r.expr = chooseExpr(r, isView, opts.PayloadColumn, opts.CSVDelimiter, autoIdx)
		}

		if isView {
			filter := viewFilter(u.Rows, opts.PayloadColumn, reserved)
			views = append(views, statementHeader(emitted)+buildViewSQL(emitted, u.Rows, filter))
			result.ViewCount++
		} else {
			where := combinedPredicate(u.Rows)
			var props []TableOption
			if opts.Rules.UseMatrix {
				props = matrix.Resolve(u.Table, emitted)
			}
			ddls = append(ddls, statementHeader(emitted)+buildTableDDL(emitted, u.Rows, props))
			insert := statementHeader(emitted) + buildInsertSQL(emitted, u.Rows, where)
			if u.Stage == StageXref {
				xrefInserts = append(xrefInserts, insert)
			} else {
				fgacInserts = append(fgacInserts, insert)
			}
			result.TableCount++
			result.InsertCount++
		}
		result.EmittedTables = append(result.EmittedTables, emitted)
	}

	result.SQL = assembleSections(views, ddls, xrefInserts, fgacInserts)
	return result
}

// viewFilter picks the first PK row's FilterPredicate and rewrites it as
// payload lookups. Non-PK filters are ignored for views (the validator
// warns about them).
func viewFilter(rows []*MappingRow, payloadCol string, reserved map[string]bool) string {
	for _, r := range rows {
		if r.IsPK() && r.FilterPredicate != "" {
			return rewritePredicateAsJSON(sanitizePredicate(r.FilterPredicate), payloadCol, reserved)
		}
	}
	return ""
}

// combinedPredicate ANDs the sanitized FilterPredicate of every row,
// de-duplicated by exact text, for XREF/FGAC inserts.
func combinedPredicate(rows []*MappingRow) string {
	var preds []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if r.FilterPredicate == "" {
			continue
		}
		clean := sanitizePredicate(r.FilterPredicate)
		if clean == "" || seen[clean] {
			continue
		}
		preds = append(preds, clean)
		seen[clean] = true
	}
	return strings.Join(preds, " AND ")
}
