package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 10485760 // 10MB
	DefaultAuthHeader      = "Authorization"

	// Catalog defaults
	DefaultFieldsPath      = "./fields.yaml"
	DefaultRulesPath       = "./rules.yaml"
	DefaultCatalogDebounce = 500 * time.Millisecond

	// Engine defaults
	DefaultSlowRuleThreshold = 250 * time.Millisecond

	// Document store defaults
	DefaultDocumentsBackend     = "memory"
	DefaultDocumentsSQLitePath  = "data/documents.db"
	DefaultSQLiteBusyTimeout    = 5 * time.Second
	DefaultPostgresPort         = 5432
	DefaultPostgresSSLMode      = "require"
	DefaultPostgresMaxOpenConns = 10
	DefaultPostgresTimeout      = 5 * time.Second

	// Audit defaults
	DefaultAuditBackend             = "sqlite"
	DefaultAuditSQLitePath          = "data/audit.db"
	DefaultAuditSQLiteMaxOpenConns  = 4
	DefaultAuditRecorderAsyncBuffer = 1000
	DefaultAuditRecorderTimeout     = 5 * time.Second
	DefaultAuditRetentionDays       = 90
	DefaultAuditRetentionSchedule   = "0 3 * * *"
	DefaultAuditQueryDefaultLimit   = 100
	DefaultAuditQueryMaxLimit       = 1000

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "underwriter"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "underwriter"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultEvaluationDurationBuckets are the evaluation histogram buckets.
var DefaultEvaluationDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// NewDefaultConfig returns a configuration with every default applied,
// including boolean switches that default to true.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	applyBoolDefaults(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// applyBoolDefaults sets switches that default to true. It must run before
// the YAML document is decoded so an explicit false survives.
func applyBoolDefaults(cfg *Config) {
	cfg.Catalog.ValidateSchema = true
	cfg.Engine.RecoverPanics = true
	cfg.Engine.LogRules = true
	cfg.Audit.Enabled = true
	cfg.Audit.SQLite.WALMode = true
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.OTLP.Insecure = true
	cfg.Telemetry.Health.Enabled = true
}

// ApplyDefaults sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.Auth.Header == "" {
		cfg.Server.Auth.Header = DefaultAuthHeader
	}

	// Catalog defaults
	if cfg.Catalog.FieldsPath == "" {
		cfg.Catalog.FieldsPath = DefaultFieldsPath
	}
	if cfg.Catalog.RulesPath == "" {
		cfg.Catalog.RulesPath = DefaultRulesPath
	}
	if cfg.Catalog.Debounce == 0 {
		cfg.Catalog.Debounce = DefaultCatalogDebounce
	}

	// Engine defaults
	if cfg.Engine.SlowRuleThreshold == 0 {
		cfg.Engine.SlowRuleThreshold = DefaultSlowRuleThreshold
	}

	applyDocumentsDefaults(&cfg.Documents)
	applyAuditDefaults(&cfg.Audit)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyDocumentsDefaults(cfg *DocumentsConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultDocumentsBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultDocumentsSQLitePath
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Postgres.MaxOpenConns == 0 {
		cfg.Postgres.MaxOpenConns = DefaultPostgresMaxOpenConns
	}
	if cfg.Postgres.ConnectTimeout == 0 {
		cfg.Postgres.ConnectTimeout = DefaultPostgresTimeout
	}
}

func applyAuditDefaults(cfg *AuditConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultAuditBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.SQLite.MaxOpenConns == 0 {
		cfg.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Recorder.AsyncBuffer == 0 {
		cfg.Recorder.AsyncBuffer = DefaultAuditRecorderAsyncBuffer
	}
	if cfg.Recorder.WriteTimeout == 0 {
		cfg.Recorder.WriteTimeout = DefaultAuditRecorderTimeout
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultAuditRetentionSchedule
	}
	if cfg.Query.DefaultLimit == 0 {
		cfg.Query.DefaultLimit = DefaultAuditQueryDefaultLimit
	}
	if cfg.Query.MaxLimit == 0 {
		cfg.Query.MaxLimit = DefaultAuditQueryMaxLimit
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.EvaluationDurationBuckets) == 0 {
		cfg.Metrics.EvaluationDurationBuckets = append([]float64(nil), DefaultEvaluationDurationBuckets...)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
