package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sttmtools/sttmgen/sttmgen"
)

var (
	generateSttm        string
	generateOutDir      string
	generateConfig      string
	generateRuleSet     string
	generateFailOnError bool

	// generateCmd represents the generate command
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generates consolidated streaming SQL from an STTM workbook",
		Long: `Generates consolidated streaming SQL from an STTM workbook.

Reads the mapping sheet (and the Config_TableMatrix sheet under the
default rule set), validates it, and writes 00_all.sql, issues.csv and a
run manifest into the output directory. Validation findings never stop
the SQL from being written; use --fail-on-error to turn error findings
into a non-zero exit code for CI.

Examples:
  sttmgen generate --sttm mapping.xlsx --out-dir out/
  sttmgen generate --sttm mapping.xlsx --out-dir out/ --fail-on-error
  sttmgen generate --sttm mapping.xlsx --out-dir out/ --rules legacy`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(generateConfig, generateSttm, generateRuleSet)

			result, err := sttmgen.GenerateWorkbook(expandPath(generateSttm), expandPath(generateOutDir), cfg)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			fmt.Printf("Generated %d views, %d tables, %d inserts into '%s'\n",
				result.ViewCount, result.TableCount, result.InsertCount, generateOutDir)

			rep := result.Report
			formatter, _ := sttmgen.GetFindingsFormatter("console")
			formatter.Write(rep, os.Stdout)
			if rep.HasErrors() || len(rep.Warnings) > 0 {
				fmt.Printf("See %s\n", sttmgen.IssuesFile)
			}

			if generateFailOnError && rep.HasErrors() {
				os.Exit(2)
			}
		},
	}
)

// loadConfig reads sttmgen.yaml (explicit path or next to the workbook)
// and applies the CLI rule-set override.
func loadConfig(configPath, workbookPath, ruleSet string) sttmgen.Config {
	path := configPath
	if path == "" {
		path = sttmgen.DefaultConfigPath(expandPath(workbookPath))
	}
	cfg, err := sttmgen.ReadConfig(expandPath(path))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if ruleSet != "" {
		cfg.RuleSet = ruleSet
	}
	return cfg
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateSttm, "sttm", "", "Path to the STTM workbook (.xlsx or .csv)")
	generateCmd.Flags().StringVar(&generateOutDir, "out-dir", "", "Output directory for the consolidated SQL")
	generateCmd.Flags().StringVar(&generateConfig, "config", "", "Path to sttmgen.yaml (default: next to the workbook)")
	generateCmd.Flags().StringVar(&generateRuleSet, "rules", "", "Rule set to generate with (matrix or legacy)")
	generateCmd.Flags().BoolVar(&generateFailOnError, "fail-on-error", false, "Exit non-zero when validation errors are found")
	generateCmd.MarkFlagRequired("sttm")
	generateCmd.MarkFlagRequired("out-dir")
}
