package stores

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditLog records teardown and replace runs in the SQLite store. It
// implements the workspace Recorder interface; recording failures are
// logged but never fail the operation being recorded.
type AuditLog struct {
	store *SQLiteStore
	log   zerolog.Logger
}

// NewAuditLog creates an audit log backed by the given store.
func NewAuditLog(store *SQLiteStore, log zerolog.Logger) *AuditLog {
	return &AuditLog{
		store: store,
		log:   log.With().Str("component", "audit").Logger(),
	}
}

// RunStarted opens a run record and returns its ID.
func (a *AuditLog) RunStarted(ctx context.Context, operation, target string) (string, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.New().String(),
		Operation: operation,
		Target:    target,
		Status:    RunStatusRunning,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateRun(ctx, run); err != nil {
		a.log.Warn().Err(err).Str("operation", operation).Msg("failed to record run start")
		return "", err
	}
	return run.ID, nil
}

// RunEvent appends one progress event to a run.
func (a *AuditLog) RunEvent(ctx context.Context, runID, level, resource, message string) error {
	event := &Event{
		RunID:     runID,
		Level:     EventLevel(level),
		Resource:  resource,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := a.store.AppendEvent(ctx, event); err != nil {
		a.log.Warn().Err(err).Str("run_id", runID).Msg("failed to record event")
		return err
	}
	return nil
}

// RunFinished closes a run with its terminal status.
func (a *AuditLog) RunFinished(ctx context.Context, runID, status string, runErr error) error {
	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}
	if err := a.store.UpdateRunStatus(ctx, runID, RunStatus(status), errMsg); err != nil {
		a.log.Warn().Err(err).Str("run_id", runID).Msg("failed to record run completion")
		return err
	}
	return nil
}
