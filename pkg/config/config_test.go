package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if cfg.Catalog.RulesPath != DefaultRulesPath {
		t.Errorf("expected rules path %q, got %q", DefaultRulesPath, cfg.Catalog.RulesPath)
	}
	if !cfg.Engine.RecoverPanics {
		t.Error("expected recover_panics to default to true")
	}
	if !cfg.Audit.Enabled || !cfg.Audit.SQLite.WALMode {
		t.Error("expected audit enabled with WAL mode by default")
	}
	if cfg.Documents.Backend != "memory" {
		t.Errorf("expected memory document backend, got %q", cfg.Documents.Backend)
	}
	if len(cfg.Telemetry.Metrics.EvaluationDurationBuckets) != len(DefaultEvaluationDurationBuckets) {
		t.Errorf("expected default buckets, got %v", cfg.Telemetry.Metrics.EvaluationDurationBuckets)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	cfg.Server.ReadTimeout = 5 * time.Second
	ApplyDefaults(cfg)
	ApplyDefaults(cfg)

	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("explicit value overwritten: %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Engine.RecoverPanics {
		t.Error("ApplyDefaults must not touch boolean switches")
	}
}

func TestConfigBuilder(t *testing.T) {
	cfg := NewTestConfig().
		WithListenAddress("0.0.0.0:9090").
		WithCatalog("f.yaml", "r.yaml").
		WithWatch(time.Second).
		WithDocumentsBackend("sqlite").
		Build()

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("unexpected listen address %q", cfg.Server.ListenAddress)
	}
	if cfg.Catalog.FieldsPath != "f.yaml" || cfg.Catalog.RulesPath != "r.yaml" {
		t.Errorf("unexpected catalog paths %+v", cfg.Catalog)
	}
	if !cfg.Catalog.Watch || cfg.Catalog.Debounce != time.Second {
		t.Errorf("unexpected watch settings %+v", cfg.Catalog)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, Database: "loans", User: "uw", SSLMode: "disable"}
	dsn := c.DSN()
	if dsn != "host=db port=5432 dbname=loans user=uw sslmode=disable" {
		t.Errorf("unexpected dsn %q", dsn)
	}

	c.Password = "secret"
	if !strings.HasSuffix(c.DSN(), " password=secret") {
		t.Errorf("password missing from %q", c.DSN())
	}
}
