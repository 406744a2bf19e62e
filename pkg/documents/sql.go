package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mercator-hq/underwriter/pkg/document"
)

// sqlStore implements Store over database/sql. Queries are written with
// "?" placeholders and rebound for the dialect.
type sqlStore struct {
	db      *sql.DB
	backend string

	// numbered selects $1-style placeholders.
	numbered bool
}

func (s *sqlStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) initSchema(ctx context.Context, timestampType string) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS loan_documents (
		loan_id TEXT NOT NULL,
		source TEXT NOT NULL,
		body TEXT NOT NULL,
		updated_at %s NOT NULL,
		PRIMARY KEY (loan_id, source)
	)`, timestampType)

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_loan_documents_updated ON loan_documents(updated_at)`)
	return err
}

// Put implements Store.
func (s *sqlStore) Put(ctx context.Context, loanID string, source document.Source, doc document.Value) error {
	if err := validateKey(loanID, source); err != nil {
		return newStorageError(s.backend, "put", loanID, err)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return newStorageError(s.backend, "put", loanID, fmt.Errorf("encode document: %w", err))
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO loan_documents (loan_id, source, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (loan_id, source) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`),
		loanID, string(source), string(body), time.Now().UnixNano(),
	)
	if err != nil {
		return newStorageError(s.backend, "put", loanID, err)
	}
	return nil
}

// Get implements Store.
func (s *sqlStore) Get(ctx context.Context, loanID string, source document.Source) (document.Value, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT body FROM loan_documents WHERE loan_id = ? AND source = ?`),
		loanID, string(source),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Null, ErrNotFound
	}
	if err != nil {
		return document.Null, newStorageError(s.backend, "get", loanID, err)
	}

	var doc document.Value
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return document.Null, newStorageError(s.backend, "get", loanID, fmt.Errorf("decode document: %w", err))
	}
	return doc, nil
}

// Load implements Store.
func (s *sqlStore) Load(ctx context.Context, loanID string) (document.Context, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT source, body FROM loan_documents WHERE loan_id = ?`), loanID)
	if err != nil {
		return document.Context{}, newStorageError(s.backend, "load", loanID, err)
	}
	defer rows.Close()

	docs := make(map[document.Source]document.Value)
	for rows.Next() {
		var source, body string
		if err := rows.Scan(&source, &body); err != nil {
			return document.Context{}, newStorageError(s.backend, "load", loanID, err)
		}
		var doc document.Value
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return document.Context{}, newStorageError(s.backend, "load", loanID,
				fmt.Errorf("decode %s document: %w", source, err))
		}
		docs[document.Source(source)] = doc
	}
	if err := rows.Err(); err != nil {
		return document.Context{}, newStorageError(s.backend, "load", loanID, err)
	}

	if len(docs) == 0 {
		return document.Context{}, ErrNotFound
	}
	return document.NewContext(docs), nil
}

// Delete implements Store.
func (s *sqlStore) Delete(ctx context.Context, loanID string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM loan_documents WHERE loan_id = ?`), loanID); err != nil {
		return newStorageError(s.backend, "delete", loanID, err)
	}
	return nil
}

// Ping implements Store.
func (s *sqlStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStorageError(s.backend, "ping", "", err)
	}
	return nil
}

// Close implements Store.
func (s *sqlStore) Close() error {
	return s.db.Close()
}
