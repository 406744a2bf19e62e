package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// LoanIDKey is the context key for loan identifiers.
	LoanIDKey contextKey = "loan_id"

	// EvaluationIDKey is the context key for evaluation identifiers.
	EvaluationIDKey contextKey = "evaluation_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithLoanID adds a loan ID to the context.
func WithLoanID(ctx context.Context, loanID string) context.Context {
	return context.WithValue(ctx, LoanIDKey, loanID)
}

// GetLoanID retrieves the loan ID from the context.
func GetLoanID(ctx context.Context) string {
	id, _ := ctx.Value(LoanIDKey).(string)
	return id
}

// WithEvaluationID adds an evaluation ID to the context.
func WithEvaluationID(ctx context.Context, evaluationID string) context.Context {
	return context.WithValue(ctx, EvaluationIDKey, evaluationID)
}

// GetEvaluationID retrieves the evaluation ID from the context.
func GetEvaluationID(ctx context.Context) string {
	id, _ := ctx.Value(EvaluationIDKey).(string)
	return id
}

// extractContextFields returns the non-empty context fields as attributes.
func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var fields []slog.Attr
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, slog.String(string(RequestIDKey), id))
	}
	if id := GetLoanID(ctx); id != "" {
		fields = append(fields, slog.String(string(LoanIDKey), id))
	}
	if id := GetEvaluationID(ctx); id != "" {
		fields = append(fields, slog.String(string(EvaluationIDKey), id))
	}
	return fields
}

// contextHandler adds the context fields to every record logged through a
// *Context method.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.AddAttrs(fields...)
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}

// WithContext returns logger with the context fields attached, for code that
// logs without passing ctx.
func WithContext(logger *slog.Logger, ctx context.Context) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
