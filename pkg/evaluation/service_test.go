package evaluation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/catalog"
	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/documents"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/validators"
)

const (
	fieldsYAML = `
los:
  ltv:
    path: [Loan Information, LTV]
  loan_purpose:
    path: [Loan Information, Purpose]
`
	rulesYAML = `
rules:
  - id: R1
    trigger: {ltv: ANY}
    validator: LTVValidator
    thresholds: {ltv: 95}
  - id: R2
    validator: NoSuchValidator
  - id: R3
    trigger: {loan_purpose: [Refinance]}
    validator: LTVValidator
`
)

type staticSource struct {
	mu   sync.Mutex
	snap *catalog.Snapshot
}

func (s *staticSource) Snapshot() (*catalog.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, catalog.ErrNotLoaded
	}
	return s.snap, nil
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []*audit.Record
	err     error
}

func (r *memoryRecorder) Record(_ context.Context, rec *audit.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildSnapshot(t *testing.T, rulesData string) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Build([]byte(fieldsYAML), []byte(rulesData), false, nil, quietLogger())
	if err != nil {
		t.Fatalf("catalog.Build() error = %v", err)
	}
	return snap
}

func parseContext(t *testing.T, raw string) document.Context {
	t.Helper()
	c, err := document.ParseContext([]byte(raw))
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}
	return c
}

func newTestService(t *testing.T, opts ...Option) (*Service, *staticSource) {
	t.Helper()
	source := &staticSource{snap: buildSnapshot(t, rulesYAML)}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	svc, err := NewService(source, validators.NewRegistry(), opts...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	n := 0
	svc.newID = func() string {
		n++
		return "eval-" + string(rune('0'+n))
	}
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, source
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(nil, engine.NewRegistry()); err == nil {
		t.Error("expected error for nil catalog source")
	}
	if _, err := NewService(&staticSource{}, nil); err == nil {
		t.Error("expected error for nil registry")
	}
}

func TestService_Evaluate(t *testing.T) {
	recorder := &memoryRecorder{}
	svc, source := newTestService(t, WithRecorder(recorder))

	c := parseContext(t, `{"los": {"loan_id": "L-100", "Loan Information": {"LTV": 0.97, "Purpose": "Purchase"}}}`)
	ev, err := svc.Evaluate(context.Background(), c)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if ev.LoanID != "L-100" || ev.EvaluationID != "eval-1" {
		t.Errorf("envelope = loan %q evaluation %q", ev.LoanID, ev.EvaluationID)
	}
	if ev.CatalogVersion != source.snap.Version {
		t.Errorf("CatalogVersion = %q, want %q", ev.CatalogVersion, source.snap.Version)
	}
	if len(ev.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(ev.Results))
	}

	if ev.Results[0].RuleID != "R1" || ev.Results[0].Status != engine.StatusAlert {
		t.Errorf("Results[0] = %s %s, want R1 ALERT", ev.Results[0].RuleID, ev.Results[0].Status)
	}
	if ev.Results[1].Status != engine.StatusError {
		t.Errorf("Results[1].Status = %s, want ERROR", ev.Results[1].Status)
	}
	if !strings.Contains(ev.Results[1].Message, "NoSuchValidator") {
		t.Errorf("Results[1].Message = %q, want it to name the validator", ev.Results[1].Message)
	}
	if ev.Results[2].Status != engine.StatusNotApplicable {
		t.Errorf("Results[2].Status = %s, want NOT_APPLICABLE", ev.Results[2].Status)
	}

	counts := ev.Counts()
	if counts[engine.StatusAlert] != 1 || counts[engine.StatusPass] != 0 {
		t.Errorf("Counts() = %v", counts)
	}

	if len(recorder.records) != 1 {
		t.Fatalf("recorded %d evaluations, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.ID != "eval-1" || rec.LoanID != "L-100" {
		t.Errorf("record = id %q loan %q", rec.ID, rec.LoanID)
	}
	if !rec.HasStatus(engine.StatusError) {
		t.Error("record should carry the ERROR status")
	}
}

func TestService_EngineRebuiltOnReload(t *testing.T) {
	svc, source := newTestService(t)
	c := parseContext(t, `{"los": {"Loan Information": {"LTV": 0.5}}}`)

	first, err := svc.Evaluate(context.Background(), c)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	eng := svc.current.engine

	if _, err := svc.Evaluate(context.Background(), c); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if svc.current.engine != eng {
		t.Error("engine rebuilt for an unchanged snapshot")
	}

	source.mu.Lock()
	source.snap = buildSnapshot(t, "rules:\n  - id: R9\n    validator: LTVValidator\n")
	source.mu.Unlock()

	second, err := svc.Evaluate(context.Background(), c)
	if err != nil {
		t.Fatalf("Evaluate() after reload error = %v", err)
	}
	if svc.current.engine == eng {
		t.Error("engine not rebuilt after reload")
	}
	if first.CatalogVersion == second.CatalogVersion {
		t.Errorf("CatalogVersion unchanged after reload: %q", second.CatalogVersion)
	}
	if len(second.Results) != 1 || second.Results[0].Status != engine.StatusPass {
		t.Errorf("results after reload = %+v, want one PASS", second.Results)
	}
}

func TestService_NotLoaded(t *testing.T) {
	svc, err := NewService(&staticSource{}, validators.NewRegistry(), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if _, err := svc.Evaluate(context.Background(), document.Context{}); !errors.Is(err, catalog.ErrNotLoaded) {
		t.Errorf("Evaluate() error = %v, want ErrNotLoaded", err)
	}
}

func TestService_EvaluateLoan(t *testing.T) {
	store := documents.NewMemoryStore()
	svc, _ := newTestService(t, WithDocumentStore(store))
	ctx := context.Background()

	if _, err := svc.EvaluateLoan(ctx, "L-7"); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("EvaluateLoan(unknown) error = %v, want ErrNotFound", err)
	}

	var los document.Value
	if err := los.UnmarshalJSON([]byte(`{"Loan Information": {"LTV": 0.9, "Purpose": "Refinance"}}`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "L-7", document.SourceOrigination, los); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	ev, err := svc.EvaluateLoan(ctx, "L-7")
	if err != nil {
		t.Fatalf("EvaluateLoan() error = %v", err)
	}
	if ev.LoanID != "L-7" {
		t.Errorf("LoanID = %q, want L-7", ev.LoanID)
	}
	if ev.Results[0].Status != engine.StatusPass || ev.Results[2].Status != engine.StatusPass {
		t.Errorf("results = %+v, want R1 and R3 PASS", ev.Results)
	}

	bare, _ := newTestService(t)
	if _, err := bare.EvaluateLoan(ctx, "L-7"); !errors.Is(err, ErrNoDocumentStore) {
		t.Errorf("EvaluateLoan() without store error = %v, want ErrNoDocumentStore", err)
	}
}

func TestService_RecorderFailureDoesNotFailEvaluation(t *testing.T) {
	recorder := &memoryRecorder{err: errors.New("buffer full")}
	svc, _ := newTestService(t, WithRecorder(recorder))

	ev, err := svc.Evaluate(context.Background(), parseContext(t, `{}`))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(ev.Results) != 3 {
		t.Errorf("got %d results, want 3", len(ev.Results))
	}
}
