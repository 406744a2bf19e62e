// Package documents stores the per-source documents of a loan so that an
// evaluation can be requested by loan id instead of by full payload.
//
// Backends:
//
//   - memory: process-local, for tests and development
//   - sqlite: single-file database (modernc.org/sqlite, no cgo)
//   - postgres: shared database for multi-instance deployments (lib/pq)
//
// Documents are stored as JSON, one row per (loan id, source).
package documents
