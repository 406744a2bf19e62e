package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/evaluation"
	"mercator-hq/underwriter/pkg/validators"
)

var evaluateFlags struct {
	fields   string
	rules    string
	loanID   string
	failOn   []string
	progress bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [context.json ...]",
	Short: "Evaluate loan files against the rule catalog",
	Long: `Evaluate one or more loan contexts without starting a server.

Each file holds a JSON object keyed by document source (los, title,
appraisal, credit_report, drive_report). With --loan, the documents of a
stored loan are read from the configured document store instead.

Examples:
  # Evaluate a single loan file
  underwriter evaluate loan.json

  # Evaluate a directory of loans, failing CI on alerts or errors
  underwriter evaluate loans/*.json --fail-on ALERT,ERROR --progress

  # Evaluate a stored loan with an alternate rule catalog
  underwriter evaluate --loan L-1001 --rules rules-next.yaml

  # CSV output
  underwriter evaluate loan.json --format csv`,
	RunE: evaluateLoans,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.fields, "fields", "", "field catalog (overrides catalog.fields_path)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.rules, "rules", "", "rule catalog (overrides catalog.rules_path)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.loanID, "loan", "", "evaluate a loan from the document store")
	evaluateCmd.Flags().StringSliceVar(&evaluateFlags.failOn, "fail-on", nil, "statuses that make the command exit 2, e.g. ALERT,ERROR")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.progress, "progress", false, "show progress on stderr")
}

// evaluationTable renders evaluations as one row per rule result.
type evaluationTable []*evaluation.Evaluation

func (t evaluationTable) Header() []string {
	return []string{"LOAN", "RULE", "STATUS", "MESSAGE"}
}

func (t evaluationTable) Rows() [][]string {
	var rows [][]string
	for _, ev := range t {
		for _, r := range ev.Results {
			rows = append(rows, []string{ev.LoanID, r.RuleID, string(r.Status), r.Message})
		}
	}
	return rows
}

func evaluateLoans(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return runEvaluate(cmd.Context(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func runEvaluate(ctx context.Context, cfg *config.Config, files []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(files) == 0 && evaluateFlags.loanID == "" {
		return fmt.Errorf("either context files or --loan must be specified")
	}
	if len(files) > 0 && evaluateFlags.loanID != "" {
		return fmt.Errorf("context files and --loan are mutually exclusive")
	}

	failOn, err := parseStatuses(evaluateFlags.failOn)
	if err != nil {
		return err
	}
	outFormat, err := outputFormat()
	if err != nil {
		return err
	}

	if evaluateFlags.fields != "" {
		cfg.Catalog.FieldsPath = evaluateFlags.fields
	}
	if evaluateFlags.rules != "" {
		cfg.Catalog.RulesPath = evaluateFlags.rules
	}

	logger, err := newCLILogger(cfg)
	if err != nil {
		return err
	}

	registry := validators.NewRegistry()
	manager, err := newCatalogManager(cfg, registry, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	opts := []evaluation.Option{
		evaluation.WithEngineOptions(engine.WithConfig(engineConfig(cfg)), engine.WithLogger(logger)),
		evaluation.WithLogger(logger),
	}

	var (
		evaluations []*evaluation.Evaluation
		failed      []string
	)
	if evaluateFlags.loanID != "" {
		store, err := openDocumentStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		svc, err := evaluation.NewService(manager, registry, append(opts, evaluation.WithDocumentStore(store))...)
		if err != nil {
			return err
		}
		ev, err := svc.EvaluateLoan(ctx, evaluateFlags.loanID)
		if err != nil {
			return cli.NewCommandError("evaluate", fmt.Errorf("loan %s: %w", evaluateFlags.loanID, err))
		}
		evaluations = append(evaluations, ev)
	} else {
		svc, err := evaluation.NewService(manager, registry, opts...)
		if err != nil {
			return err
		}

		var progress cli.ProgressReporter = cli.NoProgress{}
		if evaluateFlags.progress {
			progress = cli.NewProgressReporter(stderr)
		}
		progress.Start(len(files))

		for _, path := range files {
			ev, err := evaluateFile(ctx, svc, path)
			progress.Increment(err != nil)
			if err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", path, err))
				continue
			}
			evaluations = append(evaluations, ev)
		}
		progress.Finish()

		for _, msg := range failed {
			fmt.Fprintln(stderr, "✗", msg)
		}
		if len(failed) > 0 {
			fmt.Fprintf(stderr, "%d of %d file(s) could not be evaluated\n", len(failed), len(files))
		}
		if len(evaluations) == 0 {
			return cli.NewCommandError("evaluate", fmt.Errorf("no loan could be evaluated"))
		}
	}

	if err := writeEvaluations(stdout, outFormat, evaluations); err != nil {
		return err
	}

	if len(failed) > 0 {
		return cli.NewCommandError("evaluate", fmt.Errorf("%d file(s) could not be evaluated", len(failed)))
	}
	if n := countStatuses(evaluations, failOn); n > 0 {
		return &cli.FindingsError{Count: n, Threshold: strings.Join(evaluateFlags.failOn, ",")}
	}
	return nil
}

func evaluateFile(ctx context.Context, svc *evaluation.Service, path string) (*evaluation.Evaluation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := document.ParseContext(data)
	if err != nil {
		return nil, err
	}
	return svc.Evaluate(ctx, c)
}

func writeEvaluations(w io.Writer, f cli.OutputFormat, evaluations []*evaluation.Evaluation) error {
	formatter := cli.NewFormatter(f)
	switch f {
	case cli.FormatJSON:
		if len(evaluations) == 1 {
			return formatter.FormatTo(w, evaluations[0])
		}
		return formatter.FormatTo(w, evaluations)
	case cli.FormatCSV:
		return formatter.FormatTo(w, evaluationTable(evaluations))
	}

	for i, ev := range evaluations {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loan := ev.LoanID
		if loan == "" {
			loan = "(no loan id)"
		}
		fmt.Fprintf(w, "Loan %s  catalog %s  evaluation %s\n", loan, ev.CatalogVersion, ev.EvaluationID)
		if err := formatter.FormatTo(w, evaluationTable{ev}); err != nil {
			return err
		}
		fmt.Fprintln(w, summarize(ev.Counts()))
	}
	return nil
}

func summarize(counts map[engine.Status]int) string {
	parts := make([]string, 0, len(engine.Statuses))
	for _, s := range engine.Statuses {
		parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
	}
	return "Summary: " + strings.Join(parts, ", ")
}

func parseStatuses(values []string) (map[engine.Status]bool, error) {
	out := make(map[engine.Status]bool, len(values))
	for _, v := range values {
		s := engine.Status(strings.ToUpper(strings.TrimSpace(v)))
		if !s.Valid() {
			return nil, cli.NewConfigError("fail-on", fmt.Sprintf("unknown status %q", v))
		}
		out[s] = true
	}
	return out, nil
}

func countStatuses(evaluations []*evaluation.Evaluation, statuses map[engine.Status]bool) int {
	n := 0
	for _, ev := range evaluations {
		for _, r := range ev.Results {
			if statuses[r.Status] {
				n++
			}
		}
	}
	return n
}
