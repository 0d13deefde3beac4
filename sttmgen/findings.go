package sttmgen

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

type (
	Level string

	// A Finding is one validation result. Findings are returned as data,
	// never raised: a run always completes and hands back the full list
	// so a whole workbook can be reviewed in one pass.
	Finding struct {
		Level   Level
		Table   string // generation unit the finding belongs to, "" for workbook-level
		Message string
	}

	// Report collects the findings of one generation run, errors and
	// warnings in separate ordered lists.
	Report struct {
		RunID     string
		StartTime time.Time
		Units     []string // unit names in validation order
		Errors    []Finding
		Warnings  []Finding
	}
)

const (
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
)

func NewReport() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
}

func (r *Report) Errorf(table, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Level: LevelError, Table: table, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) Warnf(table, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Level: LevelWarning, Table: table, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Findings returns errors then warnings as one ordered list.
func (r *Report) Findings() []Finding {
	out := make([]Finding, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// unitHasErrors reports whether any error finding belongs to the unit.
func (r *Report) unitHasErrors(table string) bool {
	for _, f := range r.Errors {
		if f.Table == table {
			return true
		}
	}
	return false
}

// unitMessages collects every finding message for the unit, errors first.
func (r *Report) unitMessages(table string) []string {
	var msgs []string
	for _, f := range r.Findings() {
		if f.Table == table {
			msgs = append(msgs, string(f.Level)+": "+f.Message)
		}
	}
	return msgs
}

// A FindingsFormatter renders a whole report to a writer.
type FindingsFormatter interface {
	Write(rep *Report, w io.Writer) error
}

var findingsFormatters = make(map[string]FindingsFormatter)

func RegisterFindingsFormatter(name string, f FindingsFormatter) {
	findingsFormatters[name] = f
}

func GetFindingsFormatter(name string) (FindingsFormatter, error) {
	f, ok := findingsFormatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown findings format: %s", name)
	}
	return f, nil
}

// ConsoleFormatter prints ERRORS: and WARNINGS: blocks the way the CLI
// has always done.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Write(rep *Report, w io.Writer) error {
	if len(rep.Errors) > 0 {
		fmt.Fprintln(w, "ERRORS:")
		for _, f := range rep.Errors {
			fmt.Fprintf(w, " - %s\n", f.Message)
		}
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintln(w, "WARNINGS:")
		for _, f := range rep.Warnings {
			fmt.Fprintf(w, " - %s\n", f.Message)
		}
	}
	if !rep.HasErrors() && len(rep.Warnings) == 0 {
		fmt.Fprintln(w, "OK (no validation issues).")
	}
	return nil
}

// CSVFormatter writes the two-column level,message layout of issues.csv.
type CSVFormatter struct{}

func (CSVFormatter) Write(rep *Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"level", "message"}); err != nil {
		return err
	}
	rows := rep.Findings()
	if len(rows) == 0 {
		if err := cw.Write([]string{"INFO", "No issues found"}); err != nil {
			return err
		}
	}
	for _, f := range rows {
		if err := cw.Write([]string{string(f.Level), f.Message}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormatter emits the report as a single JSON document.
type JSONFormatter struct{}

func (JSONFormatter) Write(rep *Report, w io.Writer) error {
	output := map[string]any{
		"run_id":    rep.RunID,
		"timestamp": rep.StartTime.Format(time.RFC3339),
		"summary": map[string]any{
			"units":    len(rep.Units),
			"errors":   len(rep.Errors),
			"warnings": len(rep.Warnings),
		},
		"findings": formatFindings(rep.Findings()),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func formatFindings(findings []Finding) []map[string]any {
	out := make([]map[string]any, 0, len(findings))
	for _, f := range findings {
		m := map[string]any{
			"level":   f.Level,
			"message": f.Message,
		}
		if f.Table != "" {
			m["table"] = f.Table
		}
		out = append(out, m)
	}
	return out
}

// WriteIssuesCSV writes the issues.csv report file next to the generated
// SQL.
func WriteIssuesCSV(path string, rep *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create issues file: %w", err)
	}
	defer f.Close()
	return CSVFormatter{}.Write(rep, f)
}

func init() {
	RegisterFindingsFormatter("console", ConsoleFormatter{})
	RegisterFindingsFormatter("csv", CSVFormatter{})
	RegisterFindingsFormatter("json", JSONFormatter{})
}
