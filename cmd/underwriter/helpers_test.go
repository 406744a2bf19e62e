package main

import (
	"context"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/config"
)

// resetFlags restores every package-level flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	format = "text"
	verbose = false
	cfgFile = "testdata/does-not-exist.yaml"
	evaluateFlags = struct {
		fields   string
		rules    string
		loanID   string
		failOn   []string
		progress bool
	}{}
	lintFlags = struct {
		rules    string
		fields   string
		strict   bool
		noSchema bool
	}{}
	auditFlags = struct {
		loanID string
		since  string
		until  string
		status string
		limit  int
	}{}
	t.Cleanup(func() { format = "text" })
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Catalog.FieldsPath = "testdata/fields.yaml"
	cfg.Catalog.RulesPath = "testdata/rules.yaml"
	return cfg
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}
