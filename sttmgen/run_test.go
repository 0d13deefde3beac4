package sttmgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const mappingCSV = "TargetTable,TargetColumn,PipelineStage,IsTargetPK,MessageFormat,SourceField,SourcePrimaryTable\n" +
	"V1,id,VIEW,Y,JSON,id,raw\n" +
	"FGAC_T,id,FGAC,Y,,id,V1\n"

func writeMappingCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.csv")
	if err := os.WriteFile(path, []byte(mappingCSV), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateWorkbook(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	// csv exports carry no matrix, so stay on the legacy rule set
	result, err := GenerateWorkbook(writeMappingCSV(t), outDir, Config{RuleSet: "legacy"})
	if err != nil {
		t.Fatal(err)
	}
	if result.ViewCount != 1 || result.TableCount != 1 {
		t.Errorf("counts = %d/%d", result.ViewCount, result.TableCount)
	}

	sql, err := os.ReadFile(filepath.Join(outDir, ConsolidatedSQLFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(sql) != result.SQL {
		t.Error("written SQL differs from result")
	}
	if !strings.Contains(string(sql), "CREATE VIEW `V1` AS") {
		t.Errorf("sql:\n%s", sql)
	}

	issues, err := os.ReadFile(filepath.Join(outDir, IssuesFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(issues), "level,message") {
		t.Errorf("issues:\n%s", issues)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "manifest.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var manifest struct {
		RunID  string `yaml:"run_id"`
		Counts struct {
			Views  int `yaml:"views"`
			Tables int `yaml:"tables"`
		} `yaml:"counts"`
		Emitted []string `yaml:"emitted"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("invalid manifest: %v\n%s", err, data)
	}
	if manifest.RunID != result.Report.RunID {
		t.Errorf("run_id = %q, want %q", manifest.RunID, result.Report.RunID)
	}
	if manifest.Counts.Views != 1 || manifest.Counts.Tables != 1 {
		t.Errorf("manifest counts = %+v", manifest.Counts)
	}
	if len(manifest.Emitted) != 2 || manifest.Emitted[0] != "V1" {
		t.Errorf("emitted = %v", manifest.Emitted)
	}
}

func TestValidateWorkbookWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.csv")
	if err := os.WriteFile(path, []byte(mappingCSV), 0644); err != nil {
		t.Fatal(err)
	}

	rep, err := ValidateWorkbook(path, Config{RuleSet: "legacy"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.HasErrors() {
		t.Errorf("unexpected errors: %+v", rep.Errors)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("validate wrote files: %v", entries)
	}
}

func TestDiffWorkbookDetectsMappingChange(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	path := writeMappingCSV(t)
	if _, err := GenerateWorkbook(path, outDir, Config{RuleSet: "legacy"}); err != nil {
		t.Fatal(err)
	}

	res, err := DiffWorkbook(path, outDir, Config{RuleSet: "legacy"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Same {
		t.Errorf("unchanged mapping reported as diff:\n%s", res.Diff)
	}

	changed := strings.Replace(mappingCSV, "FGAC_T,id", "FGAC_T,acct_id", 1)
	if err := os.WriteFile(path, []byte(changed), 0644); err != nil {
		t.Fatal(err)
	}
	res, err = DiffWorkbook(path, outDir, Config{RuleSet: "legacy"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Same || !strings.Contains(res.Diff, "acct_id") {
		t.Errorf("mapping change not detected: %+v", res)
	}
}
