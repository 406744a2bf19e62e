package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

// Snapshot is an immutable pair of field and rule catalogs. Snapshots are
// shared across concurrent evaluations and must not be modified.
type Snapshot struct {
	// Fields is the field catalog.
	Fields *fields.Catalog

	// Rules lists the rules in declared order.
	Rules []*rules.Rule

	// Version identifies the catalog contents. It changes whenever either
	// file changes.
	Version string

	// LoadedAt is when the snapshot was built.
	LoadedAt time.Time

	// Findings holds lint warnings reported while loading.
	Findings []rules.Finding
}

// Resolver returns a field resolver over the snapshot's field catalog.
func (s *Snapshot) Resolver() *fields.Resolver {
	return fields.NewResolver(s.Fields)
}

// LoaderConfig contains configuration for the catalog loader.
type LoaderConfig struct {
	// FieldsPath is the field catalog file.
	FieldsPath string

	// RulesPath is the rule catalog file.
	RulesPath string

	// ValidateSchema checks the rule catalog against its JSON schema
	// before decoding.
	// Default: true.
	ValidateSchema bool
}

// Validate validates the loader configuration.
func (c *LoaderConfig) Validate() error {
	if c.FieldsPath == "" {
		return fmt.Errorf("fields path is required")
	}
	if c.RulesPath == "" {
		return fmt.Errorf("rules path is required")
	}
	return nil
}

// Loader reads both catalog files and builds snapshots.
type Loader struct {
	config     LoaderConfig
	validators rules.NameSet
	logger     *slog.Logger
}

// NewLoader creates a loader. When validators is non-nil, rules naming
// unregistered validators fail to load.
func NewLoader(config LoaderConfig, validators rules.NameSet, logger *slog.Logger) (*Loader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loader config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		config:     config,
		validators: validators,
		logger:     logger.With("component", "catalog.loader"),
	}, nil
}

// Paths returns the catalog file paths.
func (l *Loader) Paths() []string {
	return []string{l.config.FieldsPath, l.config.RulesPath}
}

// Load reads, validates and decodes both catalogs.
func (l *Loader) Load() (*Snapshot, error) {
	fieldsData, err := os.ReadFile(l.config.FieldsPath)
	if err != nil {
		return nil, fmt.Errorf("read field catalog %q: %w", l.config.FieldsPath, err)
	}
	rulesData, err := os.ReadFile(l.config.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog %q: %w", l.config.RulesPath, err)
	}

	return Build(fieldsData, rulesData, l.config.ValidateSchema, l.validators, l.logger)
}

// Build decodes catalog contents into a snapshot.
func Build(fieldsData, rulesData []byte, validateSchema bool, validators rules.NameSet, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fieldCatalog, err := fields.ParseCatalog(fieldsData)
	if err != nil {
		return nil, err
	}

	if validateSchema {
		if err := rules.ValidateSchema(rulesData); err != nil {
			return nil, err
		}
	}

	ruleList, err := rules.Parse(rulesData)
	if err != nil {
		return nil, err
	}

	findings := rules.Lint(ruleList, rules.LintOptions{
		Validators: validators,
		Fields:     fieldCatalog,
	})
	if rules.HasErrors(findings) {
		return nil, &rules.ValidationError{Findings: findings}
	}
	for _, f := range findings {
		logger.Warn("rule catalog warning", "rule_id", f.RuleID, "index", f.Index, "message", f.Message)
	}

	return &Snapshot{
		Fields:   fieldCatalog,
		Rules:    ruleList,
		Version:  Version(fieldsData, rulesData),
		LoadedAt: time.Now(),
		Findings: findings,
	}, nil
}

// Version derives a short content hash from both catalogs.
func Version(fieldsData, rulesData []byte) string {
	h := sha256.New()
	h.Write(fieldsData)
	h.Write([]byte{0})
	h.Write(rulesData)
	return hex.EncodeToString(h.Sum(nil))[:12]
}
