package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/catalog"
	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/documents"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/telemetry/logging"
)

// loadConfig reads the configuration for offline commands. When --config
// was not given and the default file does not exist, defaults are used.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd != nil && cmd.Flags().Changed("config")
	if !explicit {
		if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) {
			return config.NewDefaultConfig(), nil
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// newCLILogger builds the logger for offline commands. Logs go to stderr
// so stdout carries only results; only warnings show unless --verbose.
func newCLILogger(cfg *config.Config) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	lc.Writer = os.Stderr
	lc.Format = string(logging.FormatConsole)
	lc.Level = "warn"
	if verbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}

// newCatalogManager loads the field and rule catalogs once.
func newCatalogManager(cfg *config.Config, registry *engine.Registry, logger *slog.Logger) (*catalog.Manager, error) {
	loader, err := catalog.NewLoader(catalog.LoaderConfig{
		FieldsPath:     cfg.Catalog.FieldsPath,
		RulesPath:      cfg.Catalog.RulesPath,
		ValidateSchema: cfg.Catalog.ValidateSchema,
	}, registry, logger)
	if err != nil {
		return nil, cli.NewConfigError("catalog", err.Error())
	}

	manager, err := catalog.NewManager(loader, logger)
	if err != nil {
		return nil, err
	}
	if err := manager.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	return manager, nil
}

func engineConfig(cfg *config.Config) *engine.Config {
	return &engine.Config{
		RecoverPanics:     cfg.Engine.RecoverPanics,
		LogRules:          cfg.Engine.LogRules,
		SlowRuleThreshold: cfg.Engine.SlowRuleThreshold,
	}
}

func openDocumentStore(cfg *config.Config) (documents.Store, error) {
	dc := cfg.Documents
	store, err := documents.Open(documents.Config{
		Backend: dc.Backend,
		SQLite: documents.SQLiteConfig{
			Path:        dc.SQLite.Path,
			BusyTimeout: dc.SQLite.BusyTimeout,
		},
		Postgres: documents.PostgresConfig{
			DSN:            dc.Postgres.DSN(),
			MaxOpenConns:   dc.Postgres.MaxOpenConns,
			ConnectTimeout: dc.Postgres.ConnectTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return store, nil
}

func openAuditStorage(cfg *config.Config) (audit.Storage, error) {
	ac := cfg.Audit
	switch ac.Backend {
	case "sqlite":
		storage, err := audit.NewSQLiteStorage(&audit.SQLiteConfig{
			Path:         ac.SQLite.Path,
			MaxOpenConns: ac.SQLite.MaxOpenConns,
			WALMode:      ac.SQLite.WALMode,
			BusyTimeout:  ac.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite audit storage: %w", err)
		}
		return storage, nil
	case "memory":
		return audit.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", ac.Backend)
	}
}

func retentionConfig(cfg *config.Config) *audit.RetentionConfig {
	return &audit.RetentionConfig{
		RetentionDays: cfg.Audit.Retention.Days,
		MaxRecords:    cfg.Audit.Retention.MaxRecords,
		PruneSchedule: cfg.Audit.Retention.PruneSchedule,
	}
}

func outputFormat() (cli.OutputFormat, error) {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return "", cli.NewConfigError("format", err.Error())
	}
	return f, nil
}
