package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/validators"
)

var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List registered validators",
	Long:  `List the validator names a rule catalog may reference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		names := validators.Names()
		if f == cli.FormatText {
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}
		return cli.NewFormatter(f).FormatTo(cmd.OutOrStdout(), validatorTable(names))
	},
}

type validatorTable []string

func (t validatorTable) Header() []string { return []string{"VALIDATOR"} }

func (t validatorTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, name := range t {
		rows[i] = []string{name}
	}
	return rows
}

func init() {
	rootCmd.AddCommand(validatorsCmd)
}
