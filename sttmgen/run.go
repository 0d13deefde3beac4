package sttmgen

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConsolidatedSQLFile is the name of the generated SQL file, kept from
// the spreadsheet-era tooling so downstream deploy scripts keep working.
const (
	ConsolidatedSQLFile = "00_all.sql"
	IssuesFile          = "issues.csv"
)

// GenerateWorkbook reads the workbook, compiles it and writes the
// consolidated SQL, the issues report and the run manifest into outDir.
func GenerateWorkbook(workbookPath, outDir string, cfg Config) (*Result, error) {
	wb, err := ReadWorkbook(workbookPath)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Options(wb.Settings)
	if err != nil {
		return nil, err
	}

	result := Generate(wb.Rows, wb.Headers, wb.Matrix, opts)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outDir, err)
	}

	sqlPath := filepath.Join(outDir, ConsolidatedSQLFile)
	if err := os.WriteFile(sqlPath, []byte(result.SQL), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write '%s': %w", sqlPath, err)
	}

	if err := WriteIssuesCSV(filepath.Join(outDir, IssuesFile), result.Report); err != nil {
		return nil, err
	}

	if err := WriteManifest(outDir, result); err != nil {
		return nil, err
	}

	return result, nil
}

// ValidateWorkbook runs validation only, without writing anything.
func ValidateWorkbook(workbookPath string, cfg Config) (*Report, error) {
	wb, err := ReadWorkbook(workbookPath)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Options(wb.Settings)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	rep := NewReport()
	rows := NormalizeRows(wb.Rows)
	ValidateMapping(rows, wb.Headers, rep)
	if opts.Rules.UseMatrix {
		ValidateAgainstMatrix(rows, wb.Matrix, rep)
	}
	return rep, nil
}

// DiffWorkbook regenerates the SQL in memory and diffs it against the
// consolidated file of a previous run.
func DiffWorkbook(workbookPath, outDir string, cfg Config) (*DiffResult, error) {
	wb, err := ReadWorkbook(workbookPath)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Options(wb.Settings)
	if err != nil {
		return nil, err
	}

	result := Generate(wb.Rows, wb.Headers, wb.Matrix, opts)
	return DiffAgainstFile(filepath.Join(outDir, ConsolidatedSQLFile), result.SQL)
}
