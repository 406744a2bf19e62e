// Package server provides the HTTP API of the underwriting service.
//
// # Routes
//
//	POST   /validate                          evaluate the context in the body
//	POST   /loans/{loanID}/evaluate           evaluate the stored documents of a loan
//	PUT    /loans/{loanID}/documents/{source} store one source document
//	GET    /loans/{loanID}/documents/{source} read one source document
//	DELETE /loans/{loanID}/documents          delete every document of a loan
//	GET    /rules                             active rule catalog
//	GET    /validators                        registered validators
//	GET    /audit                             query audit records
//	GET    /audit/{id}                        one audit record
//	GET    /version                           build information
//	GET    /health, /ready, /metrics          probes and Prometheus metrics
//
// Evaluation responses use the envelope
//
//	{"loan_id": "...", "evaluation_id": "...", "catalog_version": "...",
//	 "evaluated_at": "...", "results": [{"rule_id": ..., "status": ..., "message": ..., "details": {...}}]}
//
// Errors use {"error": {"message", "type", "code"}}.
//
// # Middleware
//
// Requests pass through recovery, request ID, tracing, logging, API key
// authentication and metrics middleware, in that order. Authentication runs
// only when server.auth.enabled is set; the probe, metrics and version
// endpoints stay open.
package server
