package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a ConfigBuilder whose configuration is valid and
// uses in-memory storage for documents and audit records.
func NewTestConfig() *ConfigBuilder {
	cfg := NewDefaultConfig()
	cfg.Audit.Backend = "memory"
	return &ConfigBuilder{cfg: *cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithCatalog sets both catalog paths.
func (b *ConfigBuilder) WithCatalog(fieldsPath, rulesPath string) *ConfigBuilder {
	b.cfg.Catalog.FieldsPath = fieldsPath
	b.cfg.Catalog.RulesPath = rulesPath
	return b
}

// WithWatch enables catalog hot reload.
func (b *ConfigBuilder) WithWatch(debounce time.Duration) *ConfigBuilder {
	b.cfg.Catalog.Watch = true
	b.cfg.Catalog.Debounce = debounce
	return b
}

// WithDocumentsBackend sets the document store backend.
func (b *ConfigBuilder) WithDocumentsBackend(backend string) *ConfigBuilder {
	b.cfg.Documents.Backend = backend
	return b
}

// WithAuditBackend sets the audit backend.
func (b *ConfigBuilder) WithAuditBackend(backend string) *ConfigBuilder {
	b.cfg.Audit.Backend = backend
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithTracing enables tracing against endpoint.
func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// MinimalConfig returns a valid configuration for tests.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
