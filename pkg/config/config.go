package config

import (
	"fmt"
	"time"
)

// Config is the root configuration of the underwriting service. It contains
// the HTTP server, catalog sources, engine behaviour, document and audit
// storage, and telemetry settings.
type Config struct {
	// Server contains the HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Catalog locates the field and rule catalogs and controls hot reload.
	Catalog CatalogConfig `yaml:"catalog"`

	// Engine controls rule evaluation.
	Engine EngineConfig `yaml:"engine"`

	// Documents selects the source-document store.
	Documents DocumentsConfig `yaml:"documents"`

	// Audit controls the verdict audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of evaluation and document payloads.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Auth configures API key authentication.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig configures API key authentication of the HTTP API. Probe,
// metrics and version endpoints are never authenticated.
type AuthConfig struct {
	// Enabled turns authentication on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Header is the request header carrying the key. A "Bearer " prefix is
	// accepted and stripped.
	// Default: "Authorization"
	Header string `yaml:"header"`

	// Keys are the accepted API keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig is one accepted API key.
type APIKeyConfig struct {
	// Key is the secret value.
	Key string `yaml:"key"`

	// ClientID identifies the caller in logs.
	ClientID string `yaml:"client_id"`

	// Disabled rejects the key without removing it.
	Disabled bool `yaml:"disabled"`
}

// CatalogConfig locates the catalogs.
type CatalogConfig struct {
	// FieldsPath is the field catalog YAML file.
	// Default: "./fields.yaml"
	FieldsPath string `yaml:"fields_path"`

	// RulesPath is the rule catalog YAML file.
	// Default: "./rules.yaml"
	RulesPath string `yaml:"rules_path"`

	// Watch reloads the catalogs when either file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a reload after a change.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// ValidateSchema checks the rule catalog against its JSON schema on load.
	// Default: true
	ValidateSchema bool `yaml:"validate_schema"`
}

// EngineConfig controls the evaluation driver.
type EngineConfig struct {
	// RecoverPanics turns validator panics into ERROR results.
	// Default: true
	RecoverPanics bool `yaml:"recover_panics"`

	// LogRules emits a debug line per evaluated rule.
	// Default: true
	LogRules bool `yaml:"log_rules"`

	// SlowRuleThreshold logs a warning when one rule takes longer.
	// Zero disables the warning.
	// Default: 250ms
	SlowRuleThreshold time.Duration `yaml:"slow_rule_threshold"`
}

// DocumentsConfig selects the source-document store.
type DocumentsConfig struct {
	// Backend is "memory", "sqlite" or "postgres".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite DocumentsSQLiteConfig `yaml:"sqlite"`

	// Postgres configures the PostgreSQL backend.
	Postgres PostgresConfig `yaml:"postgres"`
}

// DocumentsSQLiteConfig configures the SQLite document store.
type DocumentsSQLiteConfig struct {
	// Path is the database file.
	// Default: "data/documents.db"
	Path string `yaml:"path"`

	// BusyTimeout is the lock wait timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PostgresConfig configures a PostgreSQL connection.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// SSLMode is the lib/pq sslmode.
	// Default: "require"
	SSLMode string `yaml:"ssl_mode"`

	// MaxOpenConns caps the connection pool.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// ConnectTimeout bounds the initial ping.
	// Default: 5s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DSN returns the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.User, c.SSLMode)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// AuditConfig controls the verdict audit trail.
type AuditConfig struct {
	// Enabled turns recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend is "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite AuditSQLiteConfig `yaml:"sqlite"`

	// Recorder configures asynchronous writes.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention configures pruning.
	Retention RetentionConfig `yaml:"retention"`

	// Query bounds GET /audit.
	Query QueryConfig `yaml:"query"`
}

// AuditSQLiteConfig configures the SQLite audit storage.
type AuditSQLiteConfig struct {
	// Path is the database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns caps the connection pool.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the lock wait timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig configures the asynchronous audit recorder.
type RecorderConfig struct {
	// AsyncBuffer is the write channel size.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds enqueueing and each write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig configures audit pruning.
type RetentionConfig struct {
	// Days is how long records are kept. 0 keeps them forever.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the number of records. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a standard cron expression.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// QueryConfig bounds audit queries.
type QueryConfig struct {
	// DefaultLimit applies when a query has no limit.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps any requested limit.
	// Default: 1000
	MaxLimit int `yaml:"max_limit"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks borrower PII (SSNs, account numbers, e-mail, phone).
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "underwriter"
	Namespace string `yaml:"namespace"`

	// EvaluationDurationBuckets defines histogram buckets (seconds) for
	// whole evaluations.
	// Default: [0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1]
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "underwriter"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// Enabled registers the health endpoints.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the liveness endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
