package stores

import (
	"time"
)

// RunStatus is the recorded status of a run. A run opens as RunStatusRunning
// and closes with the operation's terminal status string (the orchestrator's
// final phase for teardowns, the replace status for replaces).
type RunStatus string

// RunStatusRunning marks a run that has started and not yet finished.
const RunStatusRunning RunStatus = "running"

// EventLevel represents the severity level of an audit event.
type EventLevel string

const (
	EventLevelInfo    EventLevel = "info"
	EventLevelWarning EventLevel = "warning"
	EventLevelError   EventLevel = "error"
)

// Run is one recorded teardown or replace invocation. Only run identity and
// progress are persisted; reconciliation outcomes stay transient.
type Run struct {
	ID          string     `json:"id"`
	Operation   string     `json:"operation"` // teardown or replace
	Target      string     `json:"target"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Event is one append-only audit event within a run.
type Event struct {
	ID        int64      `json:"id"`
	RunID     string     `json:"run_id"`
	Level     EventLevel `json:"level"`
	Resource  string     `json:"resource,omitempty"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}
