package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	format  string
)

var rootCmd = &cobra.Command{
	Use:   "underwriter",
	Short: "Underwriter - mortgage underwriting rule engine",
	Long: `Underwriter evaluates loan files against a declarative catalog of
underwriting rules.

Each rule names a validator and an optional trigger. For every loan the engine
returns one verdict per rule: PASS, ALERT, CONDITION, NOT_APPLICABLE or ERROR.
Source documents (LOS export, title, appraisal, credit report, drive report)
are resolved through a field catalog, so rules never depend on raw document
layouts.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "text", "output format: text, json, csv")
}
