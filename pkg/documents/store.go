package documents

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/underwriter/pkg/document"
)

// ErrNotFound indicates the loan or document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrInvalidKey indicates an empty loan ID or an unknown source.
var ErrInvalidKey = errors.New("invalid document key")

// Store persists per-source loan documents and assembles them into an
// evaluation context.
type Store interface {
	// Put stores doc as the source document of loanID, replacing any
	// previous version.
	Put(ctx context.Context, loanID string, source document.Source, doc document.Value) error

	// Get returns one source document.
	Get(ctx context.Context, loanID string, source document.Source) (document.Value, error)

	// Load returns every stored document of loanID as a context. It returns
	// ErrNotFound when the loan has no documents.
	Load(ctx context.Context, loanID string) (document.Context, error)

	// Delete removes every document of loanID.
	Delete(ctx context.Context, loanID string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StorageError reports a failed backend operation.
type StorageError struct {
	Backend   string
	Operation string
	LoanID    string
	Cause     error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	if e.LoanID != "" {
		return fmt.Sprintf("document storage error [backend=%s, operation=%s, loan=%s]: %v",
			e.Backend, e.Operation, e.LoanID, e.Cause)
	}
	return fmt.Sprintf("document storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(backend, op, loanID string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: op, LoanID: loanID, Cause: cause}
}

func validateKey(loanID string, source document.Source) error {
	if loanID == "" {
		return fmt.Errorf("%w: loan id is required", ErrInvalidKey)
	}
	if !source.Valid() {
		return fmt.Errorf("%w: unknown document source %q", ErrInvalidKey, source)
	}
	return nil
}

// Config selects and configures a backend.
type Config struct {
	// Backend is "memory", "sqlite" or "postgres".
	Backend string

	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// Open creates the store selected by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		store, err := NewSQLiteStore(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := NewPostgresStore(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported document backend %q", cfg.Backend)
	}
}
