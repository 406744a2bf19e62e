package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/underwriter/pkg/document"
)

func mustValue(t *testing.T, raw string) document.Value {
	t.Helper()
	var v document.Value
	if err := v.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("UnmarshalJSON(%s) error = %v", raw, err)
	}
	return v
}

func mustPut(t *testing.T, store Store, loanID string, source document.Source, doc document.Value) {
	t.Helper()
	if err := store.Put(context.Background(), loanID, source, doc); err != nil {
		t.Fatalf("Put(%s, %s) error = %v", loanID, source, err)
	}
}

// storeContract exercises behaviour every backend must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if _, err := store.Load(ctx, "L-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(unknown) error = %v, want ErrNotFound", err)
	}

	los := mustValue(t, `{"loan_id": "L-1", "Loan Information": {"LTV": 0.97}}`)
	mustPut(t, store, "L-1", document.SourceOrigination, los)
	mustPut(t, store, "L-1", document.SourceTitle, mustValue(t, `{"Recorded": "2024-01-02"}`))
	mustPut(t, store, "L-2", document.SourceOrigination, mustValue(t, `{"loan_id": "L-2"}`))

	got, err := store.Get(ctx, "L-1", document.SourceOrigination)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !document.Equal(los, got) {
		t.Errorf("Get() = %s, want %s", got, los)
	}

	if _, err := store.Get(ctx, "L-1", document.SourceAppraisal); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing source) error = %v, want ErrNotFound", err)
	}

	c, err := store.Load(ctx, "L-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.LoanID() != "L-1" {
		t.Errorf("LoanID() = %q, want L-1", c.LoanID())
	}
	if !c.Has(document.SourceTitle) || c.Has(document.SourceCredit) {
		t.Errorf("Load() sources = %v, want los and title only", c.Sources())
	}

	// Put replaces the previous version.
	mustPut(t, store, "L-1", document.SourceTitle, mustValue(t, `{"Recorded": "2025-01-02"}`))
	title, err := store.Get(ctx, "L-1", document.SourceTitle)
	if err != nil {
		t.Fatalf("Get(title) error = %v", err)
	}
	if recorded, _ := title.Get("Recorded"); recorded.String() != "2025-01-02" {
		t.Errorf("Recorded = %q, want 2025-01-02", recorded.String())
	}

	if err := store.Delete(ctx, "L-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "L-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(deleted) error = %v, want ErrNotFound", err)
	}
	if _, err := store.Load(ctx, "L-2"); err != nil {
		t.Errorf("Load(L-2) after deleting L-1 error = %v", err)
	}

	var serr *StorageError
	if err := store.Put(ctx, "", document.SourceOrigination, los); !errors.As(err, &serr) {
		t.Errorf("Put(empty loan) error = %v, want StorageError", err)
	}

	err = store.Put(ctx, "L-3", document.Source("bank_statement"), los)
	if !errors.As(err, &serr) || !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Put(unknown source) error = %v, want StorageError wrapping ErrInvalidKey", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeContract(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "documents.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()
	storeContract(t, store)
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	mustPut(t, store, "L-9", document.SourceCredit, mustValue(t, `{"Tradelines": [{"Creditor Name": "Chase"}]}`))
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	c, err := reopened.Load(ctx, "L-9")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lines, _ := c.Get(document.SourceCredit).Get("Tradelines"); lines.Len() != 1 {
		t.Errorf("got %d tradelines, want 1", lines.Len())
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("UNDERWRITER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("UNDERWRITER_TEST_POSTGRES_DSN not set")
	}

	store, err := NewPostgresStore(PostgresConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, id := range []string{"L-1", "L-2"} {
		if err := store.Delete(ctx, id); err != nil {
			t.Fatalf("Delete(%s) error = %v", id, err)
		}
	}
	storeContract(t, store)
}

func TestRebind(t *testing.T) {
	s := &sqlStore{numbered: true}
	if got, want := s.rebind("SELECT a FROM t WHERE x = ? AND y = ?"), "SELECT a FROM t WHERE x = $1 AND y = $2"; got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}

	s.numbered = false
	if got := s.rebind("x = ?"); got != "x = ?" {
		t.Errorf("rebind() = %q, want unchanged", got)
	}
}

func TestOpen(t *testing.T) {
	store, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open(default) error = %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Open(default) = %T, want *MemoryStore", store)
	}

	store, err = Open(Config{Backend: "sqlite", SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "d.db")}})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLiteStore", store)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := Open(Config{Backend: "mongo"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
