package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sttmtools/sttmgen/sttmgen"
)

var (
	validateSttm        string
	validateConfig      string
	validateRuleSet     string
	validateFormat      string
	validateOutput      string
	validateFailOnError bool

	// validateCmd represents the validate command
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validates an STTM workbook without generating SQL",
		Long: `Validates an STTM workbook without generating SQL.

Runs the structural checks over the mapping sheet and the cross-checks
against the Config_TableMatrix sheet, then renders the findings in the
chosen format (console, csv, json or tap).

Examples:
  sttmgen validate --sttm mapping.xlsx
  sttmgen validate --sttm mapping.xlsx --format tap
  sttmgen validate --sttm mapping.xlsx --format json --output findings.json`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(validateConfig, validateSttm, validateRuleSet)

			rep, err := sttmgen.ValidateWorkbook(expandPath(validateSttm), cfg)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			formatter, err := sttmgen.GetFindingsFormatter(validateFormat)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			w := os.Stdout
			if validateOutput != "" {
				f, err := os.Create(expandPath(validateOutput))
				if err != nil {
					fmt.Printf("failed to create output file: %s\n", err)
					os.Exit(1)
				}
				defer f.Close()
				w = f
			}

			if err := formatter.Write(rep, w); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			if validateFailOnError && rep.HasErrors() {
				os.Exit(2)
			}
		},
	}
)

func init() {
	RootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateSttm, "sttm", "", "Path to the STTM workbook (.xlsx or .csv)")
	validateCmd.Flags().StringVar(&validateConfig, "config", "", "Path to sttmgen.yaml (default: next to the workbook)")
	validateCmd.Flags().StringVar(&validateRuleSet, "rules", "", "Rule set to validate against (matrix or legacy)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "console", "Findings format: console, csv, json or tap")
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "Write findings to a file instead of stdout")
	validateCmd.Flags().BoolVar(&validateFailOnError, "fail-on-error", false, "Exit non-zero when validation errors are found")
	validateCmd.MarkFlagRequired("sttm")
}
