package workspace

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Coordinator drives bulk delete-and-recreate workflows across profiles.
// Profiles are processed independently: they share no apps and no mutable
// local state, so a failure for one never prevents processing of the others.
// The batch always returns a complete per-profile report; partial success is
// the expected common case.
type Coordinator struct {
	dir     *Directory
	mut     *Mutator
	orch    *Orchestrator
	poller  *Poller
	log     zerolog.Logger
	rec     Recorder
	metrics Metrics
}

// NewCoordinator wires a replace coordinator from its collaborators.
func NewCoordinator(dir *Directory, mut *Mutator, orch *Orchestrator, poller *Poller, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		dir:    dir,
		mut:    mut,
		orch:   orch,
		poller: poller,
		log:    log.With().Str("component", "replace").Logger(),
	}
}

// WithRecorder attaches an audit recorder. Nil disables recording.
func (c *Coordinator) WithRecorder(rec Recorder) *Coordinator {
	c.rec = rec
	return c
}

// WithMetrics attaches a metrics sink. Nil disables collection.
func (c *Coordinator) WithMetrics(metrics Metrics) *Coordinator {
	c.metrics = metrics
	return c
}

// ReplaceAll replaces every profile matching the filter. Only enumeration
// failures abort the batch; per-profile failures are captured in the report
// and the remaining profiles proceed.
func (c *Coordinator) ReplaceAll(ctx context.Context, filter ParentFilter) (ReplaceReport, error) {
	parents, err := c.dir.ListParents(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parents))
	for _, p := range parents {
		names = append(names, p.Name)
	}
	c.log.Info().Strs("profiles", names).Msg("starting bulk replace")

	report := make(ReplaceReport, len(parents))
	for _, parent := range parents {
		result := c.Replace(ctx, parent.Name)
		report[parent.Name] = result
		if ctx.Err() != nil {
			break
		}
	}
	return report, nil
}

// Replace tears down one profile and recreates an equivalent one, preserving
// the profile's name and its snapshotted settings. The snapshot is taken
// before any delete is issued. A CreateRejected outcome is reported as-is:
// teardown has already succeeded, there is nothing to roll back to, and the
// coordinator never invents retry behavior the operator did not ask for.
func (c *Coordinator) Replace(ctx context.Context, name string) ReplaceResult {
	ctx, span := tracer.Start(ctx, "workspace.replace")
	span.SetAttributes(attribute.String("profile", name))
	defer span.End()

	result := ReplaceResult{Parent: name}
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordReplace(string(result.Status))
		}
	}()

	runID := c.runStarted(ctx, "replace", name)

	// Snapshot the full modeled settings, not just the execution role, so
	// the recreated profile is equivalent to the original. hadSnapshot, not
	// any field of the snapshot, records whether the profile existed: a
	// profile can legitimately carry empty settings and inherit everything
	// from the domain defaults.
	var (
		snapshot    ParentSpec
		hadSnapshot bool
	)
	parent, err := c.dir.GetParent(ctx, name)
	switch {
	case err == nil:
		snapshot = parent.Spec()
		hadSnapshot = true
	case IsAbsent(err):
		// Already torn down by an earlier run. Fall through: teardown is a
		// no-op and the recreate side decides whether anything is missing.
		snapshot = ParentSpec{Name: name}
	default:
		result.Status = ReplaceStatusFailed
		result.Err = err
		c.runFinished(ctx, runID, string(result.Status), err)
		return result
	}

	teardown, err := c.orch.Teardown(ctx, name)
	if teardown != nil {
		result.Outcome = teardown.Outcome
	}
	if err != nil {
		result.Status = ReplaceStatusFailed
		result.Err = err
		c.runFinished(ctx, runID, string(result.Status), err)
		return result
	}
	if teardown.Blocked() {
		result.Status = ReplaceStatusBlocked
		c.runFinished(ctx, runID, string(result.Status), nil)
		return result
	}

	// The profile delete is asynchronous; creating under the same name is
	// refused while the old profile is still tearing down.
	absent, err := c.poller.AwaitParentAbsent(ctx, name)
	if err != nil {
		result.Status = ReplaceStatusFailed
		result.Err = err
		c.runFinished(ctx, runID, string(result.Status), err)
		return result
	}
	if !absent {
		result.Status = ReplaceStatusBlocked
		c.runEvent(ctx, runID, "warning", name, "profile still tearing down at the polling bound")
		c.runFinished(ctx, runID, string(result.Status), nil)
		return result
	}

	// Re-running a replace that already completed must not create a
	// duplicate: if a profile with this name reappeared healthy (for
	// example created by a concurrent run), skip the create.
	if existing, err := c.dir.GetParent(ctx, name); err == nil {
		c.log.Info().Str("profile", name).Str("status", existing.Status).
			Msg("equivalent profile already present, skipping create")
		result.Status = ReplaceStatusReplaced
		c.runFinished(ctx, runID, string(result.Status), nil)
		return result
	} else if !IsAbsent(err) {
		result.Status = ReplaceStatusFailed
		result.Err = err
		c.runFinished(ctx, runID, string(result.Status), err)
		return result
	}

	if !hadSnapshot {
		// Nothing to recreate from: the profile was absent before this run
		// and no snapshot exists. Deletion side is already satisfied.
		c.log.Info().Str("profile", name).Msg("no settings snapshot, recreate skipped")
		result.Status = ReplaceStatusReplaced
		c.runFinished(ctx, runID, string(result.Status), nil)
		return result
	}

	if _, err := c.mut.CreateParent(ctx, snapshot); err != nil {
		if IsRejected(err) {
			result.Status = ReplaceStatusCreateRejected
		} else {
			result.Status = ReplaceStatusFailed
		}
		result.Err = err
		c.runFinished(ctx, runID, string(result.Status), err)
		return result
	}

	result.Status = ReplaceStatusReplaced
	c.log.Info().Str("profile", name).Msg("profile replaced")
	c.runFinished(ctx, runID, string(result.Status), nil)
	return result
}

func (c *Coordinator) runStarted(ctx context.Context, operation, target string) string {
	if c.rec == nil {
		return ""
	}
	runID, err := c.rec.RunStarted(ctx, operation, target)
	if err != nil {
		c.log.Warn().Err(err).Msg("audit run could not be opened")
		return ""
	}
	return runID
}

func (c *Coordinator) runEvent(ctx context.Context, runID, level, resource, message string) {
	if c.rec == nil || runID == "" {
		return
	}
	if err := c.rec.RunEvent(ctx, runID, level, resource, message); err != nil {
		c.log.Warn().Err(err).Msg("audit event could not be recorded")
	}
}

func (c *Coordinator) runFinished(ctx context.Context, runID, status string, runErr error) {
	if c.rec == nil || runID == "" {
		return
	}
	if err := c.rec.RunFinished(ctx, runID, status, runErr); err != nil {
		c.log.Warn().Err(err).Msg("audit run could not be closed")
	}
}
