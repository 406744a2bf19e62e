package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestMiddleware(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /loans/{loanID}/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if TraceID(r.Context()) == "" {
			t.Error("handler context has no trace")
		}
		w.WriteHeader(http.StatusOK)
	})

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	req := httptest.NewRequest(http.MethodPost, "/loans/L-1/evaluate", nil)
	req.Header.Set("traceparent", traceparent)
	rec := httptest.NewRecorder()

	tracer.Middleware(mux).ServeHTTP(rec, req)

	if got := rec.Header().Get(TraceIDHeader); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("%s = %q, want propagated trace ID", TraceIDHeader, got)
	}

	_ = tracer.ForceFlush(context.Background())
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if spans[0].Name != "POST /loans/{loanID}/evaluate" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	var route string
	for _, kv := range spans[0].Attributes {
		if kv.Key == attribute.Key(AttrHTTPRoute) {
			route = kv.Value.AsString()
		}
	}
	if route != "POST /loans/{loanID}/evaluate" {
		t.Errorf("route attribute = %q", route)
	}
}

func TestInjectExtract(t *testing.T) {
	tracer, _ := newTestTracer(t, SamplerAlways)

	ctx, span := tracer.Start(context.Background(), "client")
	defer span.End()

	headers := http.Header{}
	Inject(ctx, headers)
	if headers.Get("traceparent") == "" {
		t.Fatal("traceparent not injected")
	}

	extracted := Extract(context.Background(), headers)
	if TraceID(extracted) != TraceID(ctx) {
		t.Errorf("extracted trace %q, want %q", TraceID(extracted), TraceID(ctx))
	}
}
