package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
	"mercator-hq/underwriter/pkg/validators"
)

var lintFlags struct {
	rules    string
	fields   string
	strict   bool
	noSchema bool
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a rule catalog",
	Long: `Validate a rule catalog before deploying it.

The lint command checks:
  - YAML syntax and the catalog JSON schema
  - Every rule names a registered validator
  - Rule IDs are unique
  - Trigger fields exist in the field catalog (when --fields is given)

Unknown validators and duplicate IDs are errors; unknown trigger fields are
warnings. The command exits 2 when errors are found, or warnings with
--strict.

Examples:
  # Lint the catalogs named in config.yaml
  underwriter lint

  # Lint explicit files
  underwriter lint --rules rules.yaml --fields fields.yaml

  # Strict mode (warnings as errors)
  underwriter lint --rules rules.yaml --strict

  # JSON output for CI/CD
  underwriter lint --rules rules.yaml --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.rules, "rules", "r", "", "rule catalog (defaults to catalog.rules_path)")
	lintCmd.Flags().StringVarP(&lintFlags.fields, "fields", "f", "", "field catalog (defaults to catalog.fields_path)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().BoolVar(&lintFlags.noSchema, "no-schema", false, "skip JSON schema validation")
}

// LintResult is the lint outcome for one rule catalog.
type LintResult struct {
	File     string          `json:"file"`
	Valid    bool            `json:"valid"`
	Rules    int             `json:"rules"`
	Findings []rules.Finding `json:"findings"`
}

// Header implements cli.Table.
func (r *LintResult) Header() []string {
	return []string{"SEVERITY", "INDEX", "RULE", "MESSAGE"}
}

// Rows implements cli.Table.
func (r *LintResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		rows = append(rows, []string{string(f.Severity), strconv.Itoa(f.Index), f.RuleID, f.Message})
	}
	return rows
}

func (r *LintResult) count(severity rules.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

func lintRules(cmd *cobra.Command, args []string) error {
	rulesPath, fieldsPath := lintFlags.rules, lintFlags.fields
	if rulesPath == "" || fieldsPath == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if rulesPath == "" {
			rulesPath = cfg.Catalog.RulesPath
		}
		if fieldsPath == "" && !cmd.Flags().Changed("rules") {
			fieldsPath = cfg.Catalog.FieldsPath
		}
	}
	return runLint(cmd.OutOrStdout(), rulesPath, fieldsPath)
}

func runLint(w io.Writer, rulesPath, fieldsPath string) error {
	if rulesPath == "" {
		return fmt.Errorf("--rules must be specified")
	}
	outFormat, err := outputFormat()
	if err != nil {
		return err
	}

	result, err := lintFile(rulesPath, fieldsPath)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	if outFormat == cli.FormatText {
		writeLintText(w, result)
	} else if err := cli.NewFormatter(outFormat).FormatTo(w, result); err != nil {
		return err
	}

	errs, warnings := result.count(rules.SeverityError), result.count(rules.SeverityWarning)
	if errs > 0 {
		return cli.NewCommandError("lint", &cli.FindingsError{Count: errs, Threshold: "error"})
	}
	if lintFlags.strict && warnings > 0 {
		return cli.NewCommandError("lint", &cli.FindingsError{Count: warnings, Threshold: "warning"})
	}
	return nil
}

// lintFile validates one rule catalog. Unreadable files are returned as
// errors; problems with the catalog itself become findings.
func lintFile(rulesPath, fieldsPath string) (*LintResult, error) {
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog: %w", err)
	}

	result := &LintResult{File: rulesPath}

	if !lintFlags.noSchema {
		var schemaErr *rules.SchemaError
		if err := rules.ValidateSchema(data); errors.As(err, &schemaErr) {
			for _, v := range schemaErr.Violations {
				result.Findings = append(result.Findings, rules.Finding{Index: -1, Severity: rules.SeverityError, Message: v})
			}
			return result, nil
		} else if err != nil {
			result.Findings = append(result.Findings, rules.Finding{Index: -1, Severity: rules.SeverityError, Message: err.Error()})
			return result, nil
		}
	}

	list, err := rules.Parse(data)
	if err != nil {
		result.Findings = append(result.Findings, rules.Finding{Index: -1, Severity: rules.SeverityError, Message: err.Error()})
		return result, nil
	}
	result.Rules = len(list)

	opts := rules.LintOptions{Validators: validators.NewRegistry()}
	if fieldsPath != "" {
		catalog, err := fields.LoadCatalog(fieldsPath)
		if err != nil {
			return nil, err
		}
		opts.Fields = catalog
	}

	result.Findings = append(result.Findings, rules.Lint(list, opts)...)
	result.Valid = !rules.HasErrors(result.Findings)
	if result.Findings == nil {
		result.Findings = []rules.Finding{}
	}
	return result, nil
}

func writeLintText(w io.Writer, result *LintResult) {
	fmt.Fprintf(w, "Validating %s...\n", result.File)

	if len(result.Findings) == 0 {
		fmt.Fprintf(w, "✓ %d rule(s) valid\n", result.Rules)
	} else {
		for _, f := range result.Findings {
			switch f.Severity {
			case rules.SeverityError:
				fmt.Fprintf(w, "✗ %s\n", f)
			default:
				fmt.Fprintf(w, "⚠  %s\n", f)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d error(s), %d warning(s)\n", result.count(rules.SeverityError), result.count(rules.SeverityWarning))
	if lintFlags.strict && result.count(rules.SeverityWarning) > 0 {
		fmt.Fprintln(w, "  Strict mode enabled: treating warnings as errors")
	}
}
