package sttmgen

import (
	"strings"
	"testing"
)

func viewRow(table, column, sourceField, pk string) MappingRow {
	return MappingRow{
		TargetTable:        table,
		TargetColumn:       column,
		PipelineStage:      "VIEW",
		SourcePrimaryTable: "raw",
		MessageFormat:      "JSON",
		SourceField:        sourceField,
		IsTargetPK:         pk,
	}
}

func tableRow(table, column, stage, source, pk string) MappingRow {
	return MappingRow{
		TargetTable:        table,
		TargetColumn:       column,
		PipelineStage:      stage,
		SourcePrimaryTable: source,
		SourceField:        column,
		IsTargetPK:         pk,
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	rows := []MappingRow{
		viewRow("V1", "id", "id", "Y"),
		tableRow("XREF_ACCOUNTS", "id", "XREF", "V1", "Y"),
		tableRow("FGAC_ORDERS", "id", "FGAC", "V1", "Y"),
	}
	rows[0].FilterPredicate = "STATUS = 'A'"

	m := NewConfigMatrix([]string{"V1", "XREF_ACCOUNTS", "FGAC_ORDERS"})
	m.Set("topic", "V1", "${table_name}")
	m.Set("connector", "XREF_ACCOUNTS", "kafka")
	m.Set("changelog.mode", "XREF_ACCOUNTS", "upsert")
	m.Set("connector", "FGAC_ORDERS", "kafka")

	result := Generate(rows, nil, m, Options{})

	if result.Report.HasErrors() {
		t.Fatalf("unexpected errors: %+v", result.Report.Errors)
	}
	if len(result.Report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", result.Report.Warnings)
	}
	if result.ViewCount != 1 || result.TableCount != 2 || result.InsertCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 1/2/2",
			result.ViewCount, result.TableCount, result.InsertCount)
	}

	want := "-- ===== VIEWS =====\n" +
		"-- >>> V1\n" +
		"CREATE VIEW `V1` AS\n" +
		"SELECT\n" +
		"  CAST(TRIM(JSON_VALUE(CAST(val AS STRING), '$.id')) AS STRING) AS id\n" +
		"FROM `raw` t\n" +
		"WHERE JSON_VALUE(CAST(val AS STRING), '$.STATUS') = 'A';\n" +
		"\n" +
		"-- ===== TABLES =====\n" +
		"-- >>> XREF_ACCOUNTS\n" +
		"CREATE TABLE IF NOT EXISTS `XREF_ACCOUNTS` (\n" +
		"  id STRING,\n" +
		"  PRIMARY KEY (id) NOT ENFORCED\n" +
		")\n" +
		"WITH (\n" +
		"  'connector' = 'kafka', 'changelog.mode' = 'upsert'\n" +
		");\n" +
		"\n" +
		"-- >>> FGAC_ORDERS\n" +
		"CREATE TABLE IF NOT EXISTS `FGAC_ORDERS` (\n" +
		"  id STRING,\n" +
		"  PRIMARY KEY (id) NOT ENFORCED\n" +
		")\n" +
		"WITH (\n" +
		"  'connector' = 'kafka'\n" +
		");\n" +
		"\n" +
		"-- ===== INSERT STATEMENT SET =====\n" +
		"EXECUTE STATEMENT SET\n" +
		"BEGIN\n" +
		"\n" +
		"-- >>> XREF_ACCOUNTS\n" +
		"INSERT INTO `XREF_ACCOUNTS` (id)\n" +
		"SELECT\n" +
		"  id AS id\n" +
		"FROM `V1` t;\n" +
		"\n" +
		"-- >>> FGAC_ORDERS\n" +
		"INSERT INTO `FGAC_ORDERS` (id)\n" +
		"SELECT\n" +
		"  id AS id\n" +
		"FROM `V1` t;\n" +
		"\n" +
		"END;\n"
	if result.SQL != want {
		t.Errorf("SQL mismatch\ngot:\n%s\nwant:\n%s", result.SQL, want)
	}

	wantTables := []string{"V1", "XREF_ACCOUNTS", "FGAC_ORDERS"}
	if len(result.EmittedTables) != len(wantTables) {
		t.Fatalf("emitted = %v", result.EmittedTables)
	}
	for i, name := range wantTables {
		if result.EmittedTables[i] != name {
			t.Errorf("emitted[%d] = %s, want %s", i, result.EmittedTables[i], name)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	rows := []MappingRow{
		tableRow("FGAC_B", "x", "FGAC", "s", ""),
		tableRow("FGAC_A", "y", "FGAC", "s", "Y"),
		viewRow("V2", "b", "b", ""),
		viewRow("V2", "a", "a", "Y"),
		tableRow("FGAC_B", "w", "FGAC", "s", "Y"),
	}
	m := NewConfigMatrix(nil)

	first := Generate(rows, nil, m, Options{})
	second := Generate(rows, nil, m, Options{})
	if first.SQL != second.SQL {
		t.Errorf("output not byte-identical across runs:\n%s\nvs\n%s", first.SQL, second.SQL)
	}
}

func TestGenerateDummySourceFallback(t *testing.T) {
	rows := []MappingRow{
		{TargetTable: "FGAC_T", TargetColumn: "id", PipelineStage: "FGAC", IsTargetPK: "Y"},
	}
	result := Generate(rows, nil, NewConfigMatrix(nil), Options{})

	if !strings.Contains(result.SQL, "FROM (VALUES(1)) t(dummy)") {
		t.Errorf("dummy source missing:\n%s", result.SQL)
	}
	if !hasFinding(result.Report.Errors, "missing SourcePrimaryTable") {
		t.Errorf("missing driving table not reported: %+v", result.Report.Errors)
	}
}

func TestGenerateTableDDLFirstWinsAndCombinedPredicate(t *testing.T) {
	rows := []MappingRow{
		tableRow("FGAC_T", "id", "FGAC", "src", "Y"),
		tableRow("FGAC_T", "id", "FGAC", "src", ""),
		tableRow("FGAC_T", "amount", "FGAC", "src", ""),
	}
	rows[0].TargetDataType = "BIGINT"
	rows[1].TargetDataType = "STRING"
	rows[0].FilterPredicate = "status = 'A';"
	rows[1].FilterPredicate = "WHERE status = 'A'"
	rows[2].FilterPredicate = "amount > 0"

	result := Generate(rows, nil, NewConfigMatrix(nil), Options{})

	if !strings.Contains(result.SQL, "  id BIGINT,") {
		t.Errorf("first-wins type lost:\n%s", result.SQL)
	}
	if strings.Contains(result.SQL, "id STRING") {
		t.Errorf("duplicate column re-declared:\n%s", result.SQL)
	}
	if !strings.Contains(result.SQL, "WHERE status = 'A' AND amount > 0") {
		t.Errorf("combined predicate wrong:\n%s", result.SQL)
	}
}

func TestGenerateJoinClause(t *testing.T) {
	rows := []MappingRow{
		tableRow("FGAC_T", "id", "FGAC", "src", "Y"),
	}
	rows[0].JoinTable = "dim_customer"
	rows[0].JoinCondition = "t.cust_id = j.id"
	result := Generate(rows, nil, NewConfigMatrix(nil), Options{})

	if !strings.Contains(result.SQL, "\n  LEFT JOIN `dim_customer` j ON t.cust_id = j.id") {
		t.Errorf("join clause missing or wrong:\n%s", result.SQL)
	}
}

func TestGenerateLegacyAffixes(t *testing.T) {
	rows := []MappingRow{
		viewRow("ORDERS", "id", "id", "Y"),
		tableRow("LEDGER", "id", "FGAC", "src", "Y"),
	}
	opts := Options{
		Rules:       RulesLegacy,
		ViewPrefix:  "v_",
		ViewSuffix:  "_cur",
		TablePrefix: "stg_",
		TableSuffix: "_v1",
	}
	result := Generate(rows, nil, nil, opts)

	if !strings.Contains(result.SQL, "CREATE VIEW `v_ORDERS_cur` AS") {
		t.Errorf("view affixes not applied:\n%s", result.SQL)
	}
	if !strings.Contains(result.SQL, "CREATE TABLE IF NOT EXISTS `stg_LEDGER_v1` (") {
		t.Errorf("table affixes not applied:\n%s", result.SQL)
	}
	// the legacy rule set never consults the matrix
	if hasFinding(result.Report.Errors, "Config_TableMatrix") {
		t.Errorf("matrix checks ran under legacy rules: %+v", result.Report.Errors)
	}
	if strings.Contains(result.SQL, "WITH (") {
		t.Errorf("WITH clause emitted without matrix:\n%s", result.SQL)
	}
}

func TestGenerateNormalizesRows(t *testing.T) {
	rows := []MappingRow{
		{
			TargetTable:        "  FGAC_T  ",
			TargetColumn:       " id ",
			PipelineStage:      "FGAC",
			SourcePrimaryTable: "src",
			SourceField:        "nan",
			IsTargetPK:         "Y",
		},
	}
	result := Generate(rows, nil, NewConfigMatrix(nil), Options{})

	// "nan" cells are blanked, so the column name itself is selected
	if !strings.Contains(result.SQL, "  id AS id") {
		t.Errorf("normalization not applied:\n%s", result.SQL)
	}
	if !strings.Contains(result.SQL, "INSERT INTO `FGAC_T` (id)") {
		t.Errorf("table name not trimmed:\n%s", result.SQL)
	}
}

func TestGenerateXrefInsertsBeforeFgac(t *testing.T) {
	rows := []MappingRow{
		tableRow("FGAC_ORDERS", "id", "FGAC", "s", "Y"),
		tableRow("XREF_ACCOUNTS", "id", "XREF", "s", "Y"),
	}
	result := Generate(rows, nil, nil, Options{Rules: RulesLegacy})

	setStart := strings.Index(result.SQL, "EXECUTE STATEMENT SET")
	if setStart < 0 {
		t.Fatalf("no statement set:\n%s", result.SQL)
	}
	set := result.SQL[setStart:]
	xref := strings.Index(set, "INSERT INTO `XREF_ACCOUNTS`")
	fgac := strings.Index(set, "INSERT INTO `FGAC_ORDERS`")
	if xref < 0 || fgac < 0 || xref > fgac {
		t.Errorf("insert order wrong (xref at %d, fgac at %d):\n%s", xref, fgac, set)
	}
}
