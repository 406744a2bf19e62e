package audit

// SchemaVersion is the current audit database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements that create the audit database.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    evaluation_id TEXT NOT NULL,
    loan_id TEXT NOT NULL,
    catalog_version TEXT NOT NULL,

    -- unix nanoseconds
    evaluated_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,

    -- per-status result counts
    count_pass INTEGER NOT NULL DEFAULT 0,
    count_alert INTEGER NOT NULL DEFAULT 0,
    count_condition INTEGER NOT NULL DEFAULT 0,
    count_not_applicable INTEGER NOT NULL DEFAULT 0,
    count_error INTEGER NOT NULL DEFAULT 0,

    -- JSON encoded result list
    results TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_loan_id ON audit_records(loan_id);
CREATE INDEX IF NOT EXISTS idx_audit_evaluated_at ON audit_records(evaluated_at);
CREATE INDEX IF NOT EXISTS idx_audit_evaluation_id ON audit_records(evaluation_id);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion returns the highest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`
