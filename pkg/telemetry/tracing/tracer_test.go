package tracing

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/underwriter/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T, sampler string) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		SampleRatio: 1.0,
		ServiceName: "underwriter-test",
	}, WithExporter(exporter), WithServiceVersion("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}

	disabled, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New(disabled) error = %v", err)
	}
	if disabled.Enabled() {
		t.Error("disabled tracer reports enabled")
	}
	_, span := disabled.Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a recording span")
	}
	span.End()
	if err := disabled.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	if _, err := New(&config.TracingConfig{Enabled: true, Sampler: "sometimes"}, WithExporter(tracetest.NewInMemoryExporter())); err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestTracer_ExportsSpans(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	ctx, span := tracer.Tracer().Start(context.Background(), "engine.Evaluate")
	SetEvaluationAttributes(span, "L-1", "eval-1", "abc")
	SetResultAttributes(span, 17, 2, 0)
	if TraceID(ctx) == "" || SpanID(ctx) == "" {
		t.Error("expected trace and span IDs in context")
	}
	span.End()

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes {
		got[kv.Key] = kv.Value
	}
	if got[AttrLoanID].AsString() != "L-1" {
		t.Errorf("loan attribute = %v", got[AttrLoanID])
	}
	if got[AttrResultsAlert].AsInt64() != 2 {
		t.Errorf("alert attribute = %v", got[AttrResultsAlert])
	}
}

func TestTracer_NeverSampler(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()

	_ = tracer.ForceFlush(context.Background())
	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("exported %d spans with never sampler", n)
	}
}

func TestSetError(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	_, failed := tracer.Start(context.Background(), "failed")
	SetError(failed, errors.New("store unavailable"))
	failed.End()

	_, ok := tracer.Start(context.Background(), "ok")
	SetError(ok, nil)
	ok.End()

	_ = tracer.ForceFlush(context.Background())
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}
	if spans[0].Status.Code != codes.Error || len(spans[0].Events) == 0 {
		t.Errorf("failed span status = %v, events = %d", spans[0].Status, len(spans[0].Events))
	}
	if spans[1].Status.Code != codes.Ok {
		t.Errorf("ok span status = %v", spans[1].Status)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.25, false},
		{SamplerRatio, 1.5, true},
		{SamplerRatio, -0.1, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			s, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
			}
			if err == nil && s == nil {
				t.Error("nil sampler")
			}
		})
	}
}
