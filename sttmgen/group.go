package sttmgen

import "sort"

/*

A Unit is one generation unit: every mapping row sharing a TargetTable,
already sorted into the canonical row order. One Unit produces either a
CREATE VIEW (VIEW stage) or a CREATE TABLE plus an INSERT (XREF/FGAC).

The Stage of the unit is taken from its first row; mixed-stage units are a
mapping mistake the validator reports, generation just follows the first
row like the spreadsheet author sees it.
*/
type Unit struct {
	Table string
	Stage Stage
	Rows  []*MappingRow
}

// sortRows orders rows for stable, byte-identical output: stage rank first
// (views before tables), then target table, then primary-key rows before
// the rest, then target column name. sort.SliceStable keeps the sheet
// order for full ties.
func sortRows(rows []MappingRow) []MappingRow {
	sorted := make([]MappingRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		ra, rb := stageRank(a.PipelineStage), stageRank(b.PipelineStage)
		if ra != rb {
			return ra < rb
		}
		if a.TargetTable != b.TargetTable {
			return a.TargetTable < b.TargetTable
		}
		pa, pb := pkRank(a), pkRank(b)
		if pa != pb {
			return pa < pb
		}
		return a.TargetColumn < b.TargetColumn
	})
	return sorted
}

func pkRank(r *MappingRow) int {
	if r.IsPK() {
		return 0
	}
	return 1
}

// groupUnits sorts the rows and partitions them by TargetTable. Rows with
// a blank TargetTable are dropped here; the validator reports them
// separately. Units come back in the order their tables first appear in
// the sorted sequence, so the emitted sections are deterministic.
func groupUnits(rows []MappingRow) []*Unit {
	sorted := sortRows(rows)

	byTable := make(map[string]*Unit)
	var units []*Unit
	for i := range sorted {
		r := &sorted[i]
		if r.TargetTable == "" {
			continue
		}
		u, ok := byTable[r.TargetTable]
		if !ok {
			u = &Unit{
				Table: r.TargetTable,
				Stage: ParseStage(r.PipelineStage),
			}
			byTable[r.TargetTable] = u
			units = append(units, u)
		}
		u.Rows = append(u.Rows, r)
	}
	return units
}
