package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sttmtools/sttmgen/sttmgen"
)

var (
	connectorExcel       string
	connectorOutDir      string
	connectorFailOnError bool

	// connectorCmd represents the connector command
	connectorCmd = &cobra.Command{
		Use:   "connector",
		Short: "Generates connector config JSON files from a template workbook",
		Long: `Generates connector config JSON files from a template workbook.

Reads the Common sheet plus the sink/source detail sheets, assembles
one property map per connector, validates required fields and writes one
JSON config per connector. Sensitive values are masked in the printed
summary but kept in the files.

Examples:
  sttmgen connector --excel connectors.xlsx --out-dir out/configs`,
		Run: func(cmd *cobra.Command, args []string) {
			specs, err := sttmgen.ReadConnectorWorkbook(expandPath(connectorExcel))
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			if len(specs) == 0 {
				fmt.Println("No connectors found in workbook.")
				os.Exit(1)
			}

			rep := sttmgen.NewReport()
			sttmgen.ValidateConnectors(specs, rep)

			for _, spec := range specs {
				fmt.Print(spec.Summary())
			}

			formatter, _ := sttmgen.GetFindingsFormatter("console")
			formatter.Write(rep, os.Stdout)

			if rep.HasErrors() && connectorFailOnError {
				os.Exit(2)
			}

			paths, err := sttmgen.WriteConnectorConfigs(specs, expandPath(connectorOutDir))
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			for _, p := range paths {
				fmt.Printf("Wrote %s\n", p)
			}
		},
	}
)

func init() {
	RootCmd.AddCommand(connectorCmd)

	connectorCmd.Flags().StringVar(&connectorExcel, "excel", "", "Path to the connector template workbook")
	connectorCmd.Flags().StringVar(&connectorOutDir, "out-dir", "", "Output directory for connector JSON configs")
	connectorCmd.Flags().BoolVar(&connectorFailOnError, "fail-on-error", false, "Exit non-zero before writing when validation errors are found")
	connectorCmd.MarkFlagRequired("excel")
	connectorCmd.MarkFlagRequired("out-dir")
}
