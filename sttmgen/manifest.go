package sttmgen

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// WriteManifest records what a generation run produced: run id, counts,
// the emitted table names and the finding totals. The manifest sits next
// to 00_all.sql so a reviewer can tell which run a SQL file came from.
func WriteManifest(outDir string, result *Result) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("run_id", result.Report.RunID)
	v.Set("timestamp", result.Report.StartTime.UTC().Format(time.RFC3339))
	v.Set("counts.views", result.ViewCount)
	v.Set("counts.tables", result.TableCount)
	v.Set("counts.inserts", result.InsertCount)
	v.Set("counts.errors", len(result.Report.Errors))
	v.Set("counts.warnings", len(result.Report.Warnings))
	v.Set("emitted", result.EmittedTables)

	path := filepath.Join(outDir, "manifest.yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
