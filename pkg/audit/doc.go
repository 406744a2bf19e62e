// Package audit keeps the verdict audit trail: one Record per evaluation,
// written asynchronously by a Recorder to a Storage backend (memory or
// SQLite) and pruned by age and count on a cron schedule.
//
// Typical wiring:
//
//	storage, _ := audit.NewSQLiteStorage(&audit.SQLiteConfig{Path: "data/audit.db", WALMode: true})
//	recorder := audit.NewRecorder(storage, audit.DefaultRecorderConfig(), logger)
//	defer recorder.Close()
//
//	rec := audit.NewRecord(evaluationID, loanID, version, results, start, time.Since(start))
//	_ = recorder.Record(ctx, rec)
package audit
