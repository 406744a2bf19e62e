// Package tracing provides OpenTelemetry tracing for the underwriting
// service.
//
// Spans are exported over OTLP gRPC. The engine receives the tracer through
// engine.WithTracer and opens one span per evaluation and one child span
// per rule. The HTTP middleware continues a caller's W3C trace context:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio        # always, never or ratio
//	    sample_ratio: 0.1
//	    endpoint: localhost:4317
//	    service_name: underwriter
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	eng, _ := engine.New(resolver, validators, engine.WithTracer(tracer.Tracer()))
//	handler = tracer.Middleware(handler)
//
// A disabled tracer hands out no-op spans.
package tracing
