package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/catalog"
	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/documents"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/telemetry/logging"
	"mercator-hq/underwriter/pkg/telemetry/tracing"
)

// ErrNoDocumentStore is returned by EvaluateLoan when the service has no
// document store.
var ErrNoDocumentStore = errors.New("no document store configured")

// Evaluation is the response envelope of one evaluation.
type Evaluation struct {
	LoanID         string          `json:"loan_id"`
	EvaluationID   string          `json:"evaluation_id"`
	CatalogVersion string          `json:"catalog_version"`
	EvaluatedAt    time.Time       `json:"evaluated_at"`
	Results        []engine.Result `json:"results"`
}

// Counts returns the number of results per status.
func (e *Evaluation) Counts() map[engine.Status]int {
	return engine.CountByStatus(e.Results)
}

// SnapshotSource provides the active catalog snapshot. *catalog.Manager
// implements it.
type SnapshotSource interface {
	Snapshot() (*catalog.Snapshot, error)
}

// Recorder persists finished evaluations. *audit.Recorder implements it.
type Recorder interface {
	Record(ctx context.Context, rec *audit.Record) error
}

// Option configures a Service.
type Option func(*Service)

// WithDocumentStore sets the store EvaluateLoan reads from.
func WithDocumentStore(store documents.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithRecorder sets the audit recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithEngineOptions sets the options every engine is built with.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Service) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithTracer sets the tracer for evaluation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// compiled pairs a snapshot with the engine built over its field catalog.
type compiled struct {
	snapshot *catalog.Snapshot
	engine   *engine.Engine
}

// Service evaluates loans against the active catalog snapshot. An engine is
// built once per snapshot and reused until the catalog is reloaded.
type Service struct {
	snapshots  SnapshotSource
	registry   *engine.Registry
	store      documents.Store
	recorder   Recorder
	engineOpts []engine.Option
	tracer     trace.Tracer
	logger     *slog.Logger

	mu      sync.Mutex
	current *compiled

	newID func() string
	now   func() time.Time
}

// NewService creates an evaluation service.
func NewService(snapshots SnapshotSource, registry *engine.Registry, opts ...Option) (*Service, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot source cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("validator registry cannot be nil")
	}

	s := &Service{
		snapshots: snapshots,
		registry:  registry,
		tracer:    noop.NewTracerProvider().Tracer(""),
		logger:    slog.Default(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "evaluation")
	return s, nil
}

// Registry returns the validator registry.
func (s *Service) Registry() *engine.Registry {
	return s.registry
}

// Snapshot returns the active catalog snapshot.
func (s *Service) Snapshot() (*catalog.Snapshot, error) {
	return s.snapshots.Snapshot()
}

func (s *Service) engineFor(snap *catalog.Snapshot) (*engine.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.snapshot == snap {
		return s.current.engine, nil
	}

	eng, err := engine.New(snap.Resolver(), s.registry, s.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("build engine for catalog %s: %w", snap.Version, err)
	}
	s.current = &compiled{snapshot: snap, engine: eng}
	s.logger.Debug("engine built", "catalog_version", snap.Version, "rules", len(snap.Rules))
	return eng, nil
}

// Evaluate runs every rule of the active catalog against c and records the
// outcome. Rule failures are reported as ERROR results; an error is
// returned only when no catalog is loaded.
func (s *Service) Evaluate(ctx context.Context, c document.Context) (*Evaluation, error) {
	return s.evaluate(ctx, c, c.LoanID())
}

func (s *Service) evaluate(ctx context.Context, c document.Context, loanID string) (*Evaluation, error) {
	snap, err := s.snapshots.Snapshot()
	if err != nil {
		return nil, err
	}
	eng, err := s.engineFor(snap)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		LoanID:         loanID,
		EvaluationID:   s.newID(),
		CatalogVersion: snap.Version,
		EvaluatedAt:    s.now().UTC(),
	}

	ctx = logging.WithEvaluationID(ctx, ev.EvaluationID)
	if ev.LoanID != "" {
		ctx = logging.WithLoanID(ctx, ev.LoanID)
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.Evaluate")
	defer span.End()
	tracing.SetEvaluationAttributes(span, ev.LoanID, ev.EvaluationID, ev.CatalogVersion)

	start := time.Now()
	ev.Results = eng.Evaluate(ctx, snap.Rules, c)
	duration := time.Since(start)

	counts := ev.Counts()
	tracing.SetResultAttributes(span, len(ev.Results), counts[engine.StatusAlert], counts[engine.StatusError])

	logging.WithContext(s.logger, ctx).Info("evaluation completed",
		"catalog_version", ev.CatalogVersion,
		"rules", len(ev.Results),
		"alerts", counts[engine.StatusAlert],
		"conditions", counts[engine.StatusCondition],
		"errors", counts[engine.StatusError],
		"duration", duration,
	)

	s.record(ctx, ev, duration)
	return ev, nil
}

// EvaluateLoan loads the stored documents of loanID and evaluates them.
func (s *Service) EvaluateLoan(ctx context.Context, loanID string) (*Evaluation, error) {
	if s.store == nil {
		return nil, ErrNoDocumentStore
	}
	c, err := s.store.Load(ctx, loanID)
	if err != nil {
		return nil, err
	}

	// The stored loan ID wins over a missing or stale los.loan_id.
	return s.evaluate(ctx, c, loanID)
}

// record hands the evaluation to the audit recorder. Audit failures are
// logged and never fail the evaluation.
func (s *Service) record(ctx context.Context, ev *Evaluation, duration time.Duration) {
	if s.recorder == nil {
		return
	}
	rec := audit.NewRecord(ev.EvaluationID, ev.LoanID, ev.CatalogVersion, ev.Results, ev.EvaluatedAt, duration)
	rec.ID = ev.EvaluationID
	if err := s.recorder.Record(ctx, rec); err != nil {
		logging.WithContext(s.logger, ctx).Warn("failed to record evaluation", "error", err)
	}
}
