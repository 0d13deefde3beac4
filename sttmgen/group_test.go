package sttmgen

import "testing"

func row(table, column, stage, pk string) MappingRow {
	return MappingRow{
		TargetTable:   table,
		TargetColumn:  column,
		PipelineStage: stage,
		IsTargetPK:    pk,
	}
}

func TestGroupUnitsStageOrder(t *testing.T) {
	rows := []MappingRow{
		row("FGAC_ORDERS", "id", "FGAC", "Y"),
		row("XREF_ACCOUNTS", "acct_id", "XREF", "Y"),
		row("V_RAW", "id", "VIEW", "Y"),
	}
	units := groupUnits(rows)
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}
	want := []string{"V_RAW", "XREF_ACCOUNTS", "FGAC_ORDERS"}
	for i, u := range units {
		if u.Table != want[i] {
			t.Errorf("unit %d = %s, want %s", i, u.Table, want[i])
		}
	}
	if units[0].Stage != StageView {
		t.Errorf("V_RAW stage = %v, want view", units[0].Stage)
	}
	if units[2].Stage != StageFGAC {
		t.Errorf("FGAC_ORDERS stage = %v, want fgac", units[2].Stage)
	}
}

func TestGroupUnitsPKFirstThenColumnName(t *testing.T) {
	rows := []MappingRow{
		row("T", "zeta", "FGAC", ""),
		row("T", "alpha", "FGAC", ""),
		row("T", "mkey", "FGAC", "Y"),
	}
	units := groupUnits(rows)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	got := []string{}
	for _, r := range units[0].Rows {
		got = append(got, r.TargetColumn)
	}
	want := []string{"mkey", "alpha", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row order = %v, want %v", got, want)
		}
	}
}

func TestGroupUnitsDropsBlankTargetTable(t *testing.T) {
	rows := []MappingRow{
		row("", "orphan", "FGAC", ""),
		row("T", "id", "FGAC", "Y"),
	}
	units := groupUnits(rows)
	if len(units) != 1 || units[0].Table != "T" {
		t.Fatalf("blank-table row not dropped: %+v", units)
	}
	if len(units[0].Rows) != 1 {
		t.Errorf("got %d rows in T, want 1", len(units[0].Rows))
	}
}

func TestGroupUnitsUnknownStageSortsLast(t *testing.T) {
	rows := []MappingRow{
		row("MYSTERY", "id", "ENRICH", "Y"),
		row("FGAC_T", "id", "FGAC", "Y"),
	}
	units := groupUnits(rows)
	if units[len(units)-1].Table != "MYSTERY" {
		t.Errorf("unknown-stage table not last: %v", units)
	}
	if units[0].Table != "FGAC_T" {
		t.Errorf("first unit = %s, want FGAC_T", units[0].Table)
	}
	// unknown stages still fall into the fgac path for generation
	if ParseStage("ENRICH") != StageFGAC {
		t.Errorf("ParseStage(ENRICH) = %v, want fgac", ParseStage("ENRICH"))
	}
}

func TestGroupUnitsDeterministic(t *testing.T) {
	rows := []MappingRow{
		row("B", "x", "FGAC", ""),
		row("A", "y", "FGAC", ""),
		row("B", "a", "FGAC", "Y"),
		row("A", "b", "FGAC", "Y"),
	}
	first := groupUnits(rows)
	second := groupUnits(rows)
	if len(first) != len(second) {
		t.Fatalf("unit counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Table != second[i].Table {
			t.Errorf("unit %d differs: %s vs %s", i, first[i].Table, second[i].Table)
		}
	}
}
