package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sttmtools/sttmgen/sttmgen"
)

var (
	flattenJoiner   string
	flattenMaxDepth int
	flattenOutput   string

	// flattenCmd represents the flatten command
	flattenCmd = &cobra.Command{
		Use:   "flatten <file.json>",
		Short: "Flattens a nested JSON document into CSV rows",
		Long: `Flattens a nested JSON document into CSV rows.

Nested keys join with the separator, arrays expand into one row per
element. Useful for working out the extraction paths of a payload before
writing them into the mapping sheet.

Examples:
  sttmgen flatten payload.json
  sttmgen flatten payload.json --joiner _ --output payload.csv`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			w := os.Stdout
			if flattenOutput != "" {
				f, err := os.Create(expandPath(flattenOutput))
				if err != nil {
					fmt.Printf("failed to create output file: %s\n", err)
					os.Exit(1)
				}
				defer f.Close()
				w = f
			}

			opts := sttmgen.FlattenOptions{
				Joiner:   flattenJoiner,
				MaxDepth: flattenMaxDepth,
			}
			if err := sttmgen.FlattenFile(expandPath(args[0]), opts, w); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		},
	}
)

func init() {
	RootCmd.AddCommand(flattenCmd)

	flattenCmd.Flags().StringVar(&flattenJoiner, "joiner", ".", "Separator for nested key paths")
	flattenCmd.Flags().IntVar(&flattenMaxDepth, "max-depth", 0, "Maximum nesting depth (0 for the default)")
	flattenCmd.Flags().StringVar(&flattenOutput, "output", "", "Write CSV to a file instead of stdout")
}
