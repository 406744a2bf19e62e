package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/evaluation"
	"mercator-hq/underwriter/pkg/server"
	"mercator-hq/underwriter/pkg/telemetry/health"
	"mercator-hq/underwriter/pkg/telemetry/logging"
	"mercator-hq/underwriter/pkg/telemetry/metrics"
	"mercator-hq/underwriter/pkg/telemetry/tracing"
	"mercator-hq/underwriter/pkg/validators"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the underwriting server",
	Long: `Start the underwriting HTTP server with the specified configuration.

The server loads the field and rule catalogs, watches them for changes when
catalog.watch is set, and reloads them on SIGHUP. Evaluations are recorded in
the audit trail when audit.enabled is set.

Examples:
  # Start with default config
  underwriter run

  # Start with custom config
  underwriter run --config /etc/underwriter/config.yaml

  # Override listen address
  underwriter run --listen 0.0.0.0:8080

  # Validate config and catalogs without starting the server
  underwriter run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and catalogs without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	registry := validators.NewRegistry()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	manager, err := newCatalogManager(cfg, registry, logger)
	if err != nil {
		return err
	}
	defer manager.Close()
	snap := manager.Current()

	if runFlags.dryRun {
		fmt.Printf("✓ Configuration valid\n")
		fmt.Printf("✓ Catalog %s loaded (%d rules, %d fields)\n", snap.Version, len(snap.Rules), snap.Fields.Len())
		return nil
	}

	printBanner(cfg)
	fmt.Printf("✓ Catalog %s loaded (%d rules, %d fields)\n", snap.Version, len(snap.Rules), snap.Fields.Len())

	if collector != nil {
		manager.SetObserver(collector)
	}
	if cfg.Catalog.Watch {
		go func() {
			if err := manager.Watch(ctx, cfg.Catalog.Debounce); err != nil {
				logger.Error("catalog watch stopped", "error", err)
			}
		}()
	}
	cli.OnReload(ctx, func() {
		logger.Info("SIGHUP received, reloading catalogs")
		_ = manager.Reload()
	})

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	store, err := openDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	fmt.Printf("✓ Document store initialized (%s)\n", cfg.Documents.Backend)

	engineOpts := []engine.Option{
		engine.WithConfig(engineConfig(cfg)),
		engine.WithLogger(logger),
		engine.WithTracer(tracer.Tracer()),
	}
	if collector != nil {
		engineOpts = append(engineOpts, engine.WithObserver(collector))
	}
	svcOpts := []evaluation.Option{
		evaluation.WithDocumentStore(store),
		evaluation.WithEngineOptions(engineOpts...),
		evaluation.WithTracer(tracer.Tracer()),
		evaluation.WithLogger(logger),
	}

	var auditStorage audit.Storage
	if cfg.Audit.Enabled {
		auditStorage, err = openAuditStorage(cfg)
		if err != nil {
			return err
		}
		defer auditStorage.Close()

		recorder := audit.NewRecorder(auditStorage, &audit.RecorderConfig{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
		}, logger)
		if collector != nil {
			recorder.SetObserver(collector)
		}
		// Deferred after the storage Close so pending records flush first.
		defer recorder.Close()
		svcOpts = append(svcOpts, evaluation.WithRecorder(recorder))

		if cfg.Audit.Retention.PruneSchedule != "" {
			scheduler := audit.NewScheduler(audit.NewPruner(auditStorage, retentionConfig(cfg), logger))
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("failed to start audit retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
				if next := scheduler.NextRun(); next != nil {
					logger.Debug("audit retention scheduler started", "next_run", next)
				}
			}
		}
		fmt.Printf("✓ Audit trail initialized (%s)\n", cfg.Audit.Backend)
	}

	svc, err := evaluation.NewService(manager, registry, svcOpts...)
	if err != nil {
		return err
	}

	var checker *health.Checker
	if cfg.Telemetry.Health.Enabled {
		checker = health.New(cfg.Telemetry.Health.CheckTimeout)
		checker.RegisterCheck("catalog", health.CatalogCheck(manager))
		checker.RegisterCheck("documents", health.DocumentStoreCheck(store))
		if auditStorage != nil {
			checker.RegisterOptionalCheck("audit", health.AuditCheck(auditStorage))
		}
	}

	srv, err := server.NewServer(&cfg.Server, server.Dependencies{
		Evaluator:     svc,
		Documents:     store,
		Audit:         auditStorage,
		Health:        checker,
		Metrics:       collector,
		Tracer:        tracer,
		AuditQuery:    cfg.Audit.Query,
		MetricsPath:   cfg.Telemetry.Metrics.Path,
		LivenessPath:  cfg.Telemetry.Health.LivenessPath,
		ReadinessPath: cfg.Telemetry.Health.ReadinessPath,
		Version:       Version,
		Commit:        GitCommit,
		BuildDate:     BuildDate,
		Logger:        logger,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	if checker != nil {
		fmt.Printf("✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	}
	if cfg.Server.Auth.Enabled {
		fmt.Printf("✓ API key authentication enabled (%d key(s), header %s)\n", len(cfg.Server.Auth.Keys), cfg.Server.Auth.Header)
	}
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Underwriter v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("catalog paths",
		"fields", cfg.Catalog.FieldsPath,
		"rules", cfg.Catalog.RulesPath,
		"watch", cfg.Catalog.Watch,
	)
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}
}
