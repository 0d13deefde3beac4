package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sttmtools/sttmgen/sttmgen"
)

var (
	diffSttm    string
	diffOutDir  string
	diffConfig  string
	diffRuleSet string

	// diffCmd represents the diff command
	diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "Shows how regenerating would change the consolidated SQL",
		Long: `Shows how regenerating would change the consolidated SQL.

Regenerates the SQL in memory and diffs it against the 00_all.sql of a
previous run, so a mapping edit can be reviewed as a SQL change. Exits 1
when the output would change, like diff(1).

Examples:
  sttmgen diff --sttm mapping.xlsx --out-dir out/`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(diffConfig, diffSttm, diffRuleSet)

			res, err := sttmgen.DiffWorkbook(expandPath(diffSttm), expandPath(diffOutDir), cfg)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			switch {
			case res.Missing:
				fmt.Printf("No previous SQL at '%s'; run generate first.\n", res.Path)
				os.Exit(1)
			case res.Same:
				fmt.Println("No changes.")
			default:
				fmt.Print(res.Diff)
				os.Exit(1)
			}
		},
	}
)

func init() {
	RootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffSttm, "sttm", "", "Path to the STTM workbook (.xlsx or .csv)")
	diffCmd.Flags().StringVar(&diffOutDir, "out-dir", "", "Directory holding the previous run's 00_all.sql")
	diffCmd.Flags().StringVar(&diffConfig, "config", "", "Path to sttmgen.yaml (default: next to the workbook)")
	diffCmd.Flags().StringVar(&diffRuleSet, "rules", "", "Rule set to generate with (matrix or legacy)")
	diffCmd.MarkFlagRequired("sttm")
	diffCmd.MarkFlagRequired("out-dir")
}
