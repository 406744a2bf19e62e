package documents

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresConfig configures the PostgreSQL document store.
type PostgresConfig struct {
	// DSN is a lib/pq connection string, for example
	// "host=localhost port=5432 user=underwriter dbname=loans sslmode=disable".
	DSN string

	// MaxOpenConns caps the connection pool.
	// Default: 10
	MaxOpenConns int

	// ConnectTimeout bounds the initial ping.
	// Default: 5 seconds
	ConnectTimeout time.Duration
}

// PostgresStore stores documents in PostgreSQL.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects to PostgreSQL and creates the schema if needed.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn cannot be empty")
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, newStorageError("postgres", "open", "", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newStorageError("postgres", "ping", "", err)
	}

	store := &PostgresStore{&sqlStore{db: db, backend: "postgres", numbered: true}}
	if err := store.initSchema(ctx, "BIGINT"); err != nil {
		db.Close()
		return nil, newStorageError("postgres", "init_schema", "", err)
	}
	return store, nil
}
