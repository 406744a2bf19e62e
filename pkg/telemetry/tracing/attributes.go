package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Custom keys use the "underwriter." namespace.
const (
	AttrLoanID         = "underwriter.loan_id"
	AttrEvaluationID   = "underwriter.evaluation_id"
	AttrCatalogVersion = "underwriter.catalog.version"
	AttrRequestID      = "underwriter.request_id"
	AttrDocumentSource = "underwriter.document.source"

	AttrResultsTotal = "underwriter.results.total"
	AttrResultsAlert = "underwriter.results.alert"
	AttrResultsError = "underwriter.results.error"

	AttrHTTPMethod   = "http.request.method"
	AttrHTTPRoute    = "http.route"
	AttrErrorMessage = "error.message"
)

// SetEvaluationAttributes tags a span with the evaluation it belongs to.
func SetEvaluationAttributes(span trace.Span, loanID, evaluationID, catalogVersion string) {
	span.SetAttributes(
		attribute.String(AttrLoanID, loanID),
		attribute.String(AttrEvaluationID, evaluationID),
		attribute.String(AttrCatalogVersion, catalogVersion),
	)
}

// SetResultAttributes records the outcome counts of an evaluation.
func SetResultAttributes(span trace.Span, total, alerts, errs int) {
	span.SetAttributes(
		attribute.Int(AttrResultsTotal, total),
		attribute.Int(AttrResultsAlert, alerts),
		attribute.Int(AttrResultsError, errs),
	)
}

// SetHTTPAttributes records the request method and route pattern.
func SetHTTPAttributes(span trace.Span, method, route string) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
	)
}
