package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace ID of a request back to the caller.
const TraceIDHeader = "X-Trace-ID"

// Extract returns ctx with the W3C trace context found in headers.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers.
func Inject(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// Middleware extracts the caller's trace context and starts a server span
// per request. The span is named after the matched route pattern when the
// mux sets one, and the trace ID is echoed in TraceIDHeader.
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := Extract(r.Context(), r.Header)
		ctx, span := t.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if id := TraceID(ctx); id != "" {
			w.Header().Set(TraceIDHeader, id)
		}

		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)

		SetHTTPAttributes(span, r.Method, routeOf(r))
		if r.Pattern != "" {
			span.SetName(r.Pattern)
		}
	})
}

func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}
