package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/engine"
)

var auditFlags struct {
	loanID string
	since  string
	until  string
	status string
	limit  int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and maintain the evaluation audit trail",
	Long: `Query and maintain the evaluation audit trail.

Every evaluation served by "underwriter run" is recorded with its catalog
version and full result list when audit.enabled is set.`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search audit records",
	Long: `Search audit records, newest first.

Examples:
  # All evaluations of one loan
  underwriter audit query --loan L-1001

  # Evaluations with at least one ALERT in a time window
  underwriter audit query --status ALERT \
    --since 2026-01-01T00:00:00Z --until 2026-02-01T00:00:00Z

  # Export as CSV
  underwriter audit query --limit 500 --format csv`,
	RunE: queryAudit,
}

var auditShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one audit record",
	Args:  cobra.ExactArgs(1),
	RunE:  showAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete records older than audit.retention.days and the oldest records
beyond audit.retention.max_records.`,
	RunE: pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditShowCmd, auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.loanID, "loan", "", "filter by loan ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.since, "since", "", "earliest evaluation time (RFC 3339)")
	auditQueryCmd.Flags().StringVar(&auditFlags.until, "until", "", "latest evaluation time (RFC 3339)")
	auditQueryCmd.Flags().StringVar(&auditFlags.status, "status", "", "only records with at least one result of this status")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 0, "maximum records (defaults to audit.query.default_limit)")
}

// recordTable renders audit records one per row.
type recordTable []*audit.Record

func (t recordTable) Header() []string {
	return []string{"ID", "LOAN", "EVALUATED_AT", "CATALOG", "PASS", "ALERT", "CONDITION", "N/A", "ERROR"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, rec := range t {
		row := []string{rec.ID, rec.LoanID, rec.EvaluatedAt.Format(time.RFC3339), rec.CatalogVersion}
		for _, s := range engine.Statuses {
			row = append(row, strconv.Itoa(rec.Counts[s]))
		}
		rows = append(rows, row)
	}
	return rows
}

func openAuditFromConfig(cmd *cobra.Command) (*config.Config, audit.Storage, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Audit.Enabled {
		return nil, nil, cli.NewConfigError("audit.enabled", "audit trail is disabled")
	}
	storage, err := openAuditStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, storage, nil
}

// buildAuditQuery converts the query flags, applying the configured limits.
func buildAuditQuery(limits config.QueryConfig) (*audit.Query, error) {
	q := &audit.Query{LoanID: auditFlags.loanID, Limit: auditFlags.limit}

	for _, bound := range []struct {
		flag  string
		value string
		dst   **time.Time
	}{{"since", auditFlags.since, &q.Since}, {"until", auditFlags.until, &q.Until}} {
		if bound.value == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, bound.value)
		if err != nil {
			return nil, cli.NewConfigError(bound.flag, "must be an RFC 3339 timestamp")
		}
		*bound.dst = &t
	}

	if auditFlags.status != "" {
		statuses, err := parseStatuses([]string{auditFlags.status})
		if err != nil {
			return nil, err
		}
		for s := range statuses {
			q.Status = s
		}
	}

	if q.Limit <= 0 {
		q.Limit = limits.DefaultLimit
	}
	if limits.MaxLimit > 0 && q.Limit > limits.MaxLimit {
		q.Limit = limits.MaxLimit
	}
	return q, nil
}

func queryAudit(cmd *cobra.Command, args []string) error {
	cfg, storage, err := openAuditFromConfig(cmd)
	if err != nil {
		return err
	}
	defer storage.Close()
	return runAuditQuery(cmd.Context(), storage, cfg.Audit.Query, cmd.OutOrStdout())
}

func runAuditQuery(ctx context.Context, storage audit.Storage, limits config.QueryConfig, w io.Writer) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	q, err := buildAuditQuery(limits)
	if err != nil {
		return err
	}

	records, err := storage.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	total, err := storage.Count(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	if f == cli.FormatJSON {
		if records == nil {
			records = []*audit.Record{}
		}
		return cli.NewFormatter(f).FormatTo(w, map[string]interface{}{"records": records, "total": total})
	}
	if err := cli.NewFormatter(f).FormatTo(w, recordTable(records)); err != nil {
		return err
	}
	if f == cli.FormatText {
		fmt.Fprintf(w, "\n%d of %d matching record(s)\n", len(records), total)
	}
	return nil
}

func showAudit(cmd *cobra.Command, args []string) error {
	_, storage, err := openAuditFromConfig(cmd)
	if err != nil {
		return err
	}
	defer storage.Close()

	rec, err := storage.Get(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("audit show", err)
	}
	return (&cli.JSONFormatter{Indent: true}).FormatTo(cmd.OutOrStdout(), rec)
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	cfg, storage, err := openAuditFromConfig(cmd)
	if err != nil {
		return err
	}
	defer storage.Close()

	logger, err := newCLILogger(cfg)
	if err != nil {
		return err
	}

	deleted, err := audit.NewPruner(storage, retentionConfig(cfg), logger).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d audit record(s)\n", deleted)
	return nil
}
