package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testRun(id string, startedAt time.Time) *Run {
	return &Run{
		ID:        id,
		Operation: "teardown",
		Target:    "alice",
		Status:    RunStatusRunning,
		StartedAt: startedAt,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}
}

func TestCreateAndGetRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := store.CreateRun(ctx, testRun("run-1", now)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Operation != "teardown" || got.Target != "alice" {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Status != RunStatusRunning {
		t.Errorf("expected running, got %s", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("expected no completion time for an open run")
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetRun(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for a missing run")
	}
}

func TestUpdateRunStatusClosesRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.CreateRun(ctx, testRun("run-1", now)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	msg := "teardown blocked"
	if err := store.UpdateRunStatus(ctx, "run-1", RunStatus("blocked"), &msg); err != nil {
		t.Fatalf("UpdateRunStatus failed: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunStatus("blocked") {
		t.Errorf("expected blocked, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("expected a completion time on a closed run")
	}
	if got.Error == nil || *got.Error != msg {
		t.Errorf("expected the error message persisted, got %v", got.Error)
	}
}

func TestUpdateRunStatusUnknownRun(t *testing.T) {
	store := setupTestStore(t)
	if err := store.UpdateRunStatus(context.Background(), "missing", RunStatus("parent_deleted"), nil); err == nil {
		t.Fatal("expected an error for an unknown run")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	if err := store.CreateRun(ctx, testRun("run-old", base)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if err := store.CreateRun(ctx, testRun("run-new", base.Add(time.Minute))); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-new" || runs[1].ID != "run-old" {
		t.Errorf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestAppendAndGetEvents(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.CreateRun(ctx, testRun("run-1", now)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	first := &Event{RunID: "run-1", Level: EventLevelInfo, Resource: "alice", Message: "teardown started", Timestamp: now}
	second := &Event{RunID: "run-1", Level: EventLevelWarning, Resource: "JupyterServer/lab", Message: "app delete rejected", Timestamp: now.Add(time.Second)}
	for _, e := range []*Event{first, second} {
		if err := store.AppendEvent(ctx, e); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}
	if first.ID == 0 || second.ID == 0 {
		t.Error("expected event IDs assigned on insert")
	}

	events, err := store.GetEvents(ctx, "run-1", 10, 0)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Message != "app delete rejected" {
		t.Errorf("expected most recent event first, got %q", events[0].Message)
	}
	if events[0].Level != EventLevelWarning {
		t.Errorf("unexpected level: %s", events[0].Level)
	}
}

func TestAuditLogRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	audit := NewAuditLog(store, zerolog.Nop())
	ctx := context.Background()

	runID, err := audit.RunStarted(ctx, "replace", "alice")
	if err != nil {
		t.Fatalf("RunStarted failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run ID")
	}

	if err := audit.RunEvent(ctx, runID, "warning", "alice", "profile still tearing down"); err != nil {
		t.Fatalf("RunEvent failed: %v", err)
	}
	if err := audit.RunFinished(ctx, runID, "replaced", nil); err != nil {
		t.Fatalf("RunFinished failed: %v", err)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != RunStatus("replaced") {
		t.Errorf("expected replaced, got %s", run.Status)
	}
	if run.Error != nil {
		t.Errorf("expected no error message, got %v", *run.Error)
	}

	events, err := store.GetEvents(ctx, runID, 10, 0)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Level != EventLevelWarning {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestHealthCheck(t *testing.T) {
	store := setupTestStore(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}

	uninitialized := &SQLiteStore{path: "x.db"}
	if err := uninitialized.HealthCheck(context.Background()); err == nil {
		t.Error("expected an error before Init")
	}
}
