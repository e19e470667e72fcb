// Package stores provides the SQLite-backed audit log for teardown and
// replace runs: WAL mode, embedded migrations, and an AuditLog adapter that
// satisfies the workspace Recorder interface. Reconciliation outcomes are
// never persisted here; the log records run identity, progress events and
// final status only.
package stores
