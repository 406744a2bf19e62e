package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/underwriter/pkg/engine"
)

// SQLiteConfig contains configuration for the SQLite audit storage.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// statusColumns maps each status to its count column.
var statusColumns = map[engine.Status]string{
	engine.StatusPass:          "count_pass",
	engine.StatusAlert:         "count_alert",
	engine.StatusCondition:     "count_condition",
	engine.StatusNotApplicable: "count_not_applicable",
	engine.StatusError:         "count_error",
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, NewStorageError("sqlite", "open", fmt.Errorf("db path cannot be empty"))
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "audit.sqlite")

	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, NewStorageError("sqlite", "open", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", config.Path, config.BusyTimeout.Milliseconds())
	if config.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}
	return nil
}

// Store implements Storage.
func (s *SQLiteStorage) Store(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return NewStorageError("sqlite", "store", fmt.Errorf("record id is required"))
	}

	results, err := json.Marshal(rec.Results)
	if err != nil {
		return NewStorageError("sqlite", "store", fmt.Errorf("encode results: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_records (
			id, evaluation_id, loan_id, catalog_version, evaluated_at, duration_ns,
			count_pass, count_alert, count_condition, count_not_applicable, count_error,
			results
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EvaluationID, rec.LoanID, rec.CatalogVersion,
		rec.EvaluatedAt.UnixNano(), int64(rec.Duration),
		rec.Counts[engine.StatusPass],
		rec.Counts[engine.StatusAlert],
		rec.Counts[engine.StatusCondition],
		rec.Counts[engine.StatusNotApplicable],
		rec.Counts[engine.StatusError],
		string(results),
	)
	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}
	return nil
}

const selectColumns = `id, evaluation_id, loan_id, catalog_version, evaluated_at, duration_ns, results`

// Get implements Storage.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM audit_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get", err)
	}
	return rec, nil
}

// Query implements Storage.
func (s *SQLiteStorage) Query(ctx context.Context, q *Query) ([]*Record, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	stmt := `SELECT ` + selectColumns + ` FROM audit_records` + where + ` ORDER BY evaluated_at DESC`
	if q != nil && q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "query", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	return out, nil
}

// Count implements Storage.
func (s *SQLiteStorage) Count(ctx context.Context, q *Query) (int64, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_records`+where, args...).Scan(&n); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteBefore implements Storage.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_records WHERE evaluated_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_before", err)
	}
	return res.RowsAffected()
}

// DeleteOldest implements Storage.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM audit_records WHERE id NOT IN (
			SELECT id FROM audit_records ORDER BY evaluated_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_oldest", err)
	}
	return res.RowsAffected()
}

// Close implements Storage.
func (s *SQLiteStorage) Close() error {
	s.logger.Info("closing SQLite audit storage")
	return s.db.Close()
}

func buildWhere(q *Query) (string, []interface{}, error) {
	if q == nil {
		return "", nil, nil
	}

	var clauses []string
	var args []interface{}

	if q.LoanID != "" {
		clauses = append(clauses, "loan_id = ?")
		args = append(args, q.LoanID)
	}
	if q.Since != nil {
		clauses = append(clauses, "evaluated_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if q.Until != nil {
		clauses = append(clauses, "evaluated_at <= ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.Status != "" {
		column, ok := statusColumns[q.Status]
		if !ok {
			return "", nil, fmt.Errorf("unknown status %q", q.Status)
		}
		clauses = append(clauses, column+" > 0")
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec         Record
		evaluatedAt int64
		duration    int64
		results     string
	)
	if err := row.Scan(&rec.ID, &rec.EvaluationID, &rec.LoanID, &rec.CatalogVersion,
		&evaluatedAt, &duration, &results); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
		return nil, fmt.Errorf("decode results of %s: %w", rec.ID, err)
	}
	rec.EvaluatedAt = time.Unix(0, evaluatedAt).UTC()
	rec.Duration = time.Duration(duration)
	rec.Counts = engine.CountByStatus(rec.Results)
	return &rec, nil
}
