package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercator-hq/underwriter/pkg/engine"
)

// ErrRecordNotFound is returned by Get when no record has the requested ID.
var ErrRecordNotFound = errors.New("audit record not found")

// Record is the audit trail entry of one evaluation.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// EvaluationID is the identifier returned to the caller of the
	// evaluation.
	EvaluationID string `json:"evaluation_id"`

	// LoanID is the loan the evaluation ran against. It may be empty when the
	// origination document carries no loan_id.
	LoanID string `json:"loan_id"`

	// CatalogVersion identifies the catalog snapshot used.
	CatalogVersion string `json:"catalog_version"`

	// Results is the full ordered result list.
	Results []engine.Result `json:"results"`

	// Counts is the number of results per status.
	Counts map[engine.Status]int `json:"counts"`

	EvaluatedAt time.Time     `json:"evaluated_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// NewRecord builds a record for a finished evaluation. Counts are derived
// from results.
func NewRecord(evaluationID, loanID, catalogVersion string, results []engine.Result, evaluatedAt time.Time, duration time.Duration) *Record {
	return &Record{
		EvaluationID:   evaluationID,
		LoanID:         loanID,
		CatalogVersion: catalogVersion,
		Results:        results,
		Counts:         engine.CountByStatus(results),
		EvaluatedAt:    evaluatedAt,
		Duration:       duration,
	}
}

// HasStatus reports whether at least one result has the given status.
func (r *Record) HasStatus(status engine.Status) bool {
	return r.Counts[status] > 0
}

// Query filters records. Zero-valued fields do not filter.
type Query struct {
	// LoanID matches records of one loan.
	LoanID string

	// Since and Until bound EvaluatedAt (inclusive).
	Since *time.Time
	Until *time.Time

	// Status keeps records with at least one result of this status.
	Status engine.Status

	// Limit caps the number of records returned. Records are returned
	// newest first.
	Limit int
}

// Matches reports whether rec satisfies every filter of q except Limit.
func (q *Query) Matches(rec *Record) bool {
	if q == nil {
		return true
	}
	if q.LoanID != "" && rec.LoanID != q.LoanID {
		return false
	}
	if q.Since != nil && rec.EvaluatedAt.Before(*q.Since) {
		return false
	}
	if q.Until != nil && rec.EvaluatedAt.After(*q.Until) {
		return false
	}
	if q.Status != "" && !rec.HasStatus(q.Status) {
		return false
	}
	return true
}

// Storage persists audit records.
type Storage interface {
	// Store writes a record. The record ID must be set.
	Store(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID or ErrRecordNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Query returns matching records, newest first.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of matching records, ignoring q.Limit.
	Count(ctx context.Context, q *Query) (int64, error)

	// DeleteBefore removes records evaluated before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the oldest records until at most keep remain.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Close releases backend resources.
	Close() error
}

// StorageError reports a failed storage operation.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new storage error.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// RecorderError reports a record that could not be queued for writing.
type RecorderError struct {
	RecordID string
	Cause    error
}

// Error returns the error message.
func (e *RecorderError) Error() string {
	return fmt.Sprintf("audit recorder error [record=%s]: %v", e.RecordID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}
