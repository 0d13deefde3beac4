package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // Will be set via ldflags during build

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:     "sttmgen",
		Short:   "Compile STTM mapping workbooks into streaming SQL",
		Version: version,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// expandPath resolves ~ in user-supplied paths.
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
