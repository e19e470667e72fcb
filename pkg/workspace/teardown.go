package workspace

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/baram-io/baram/pkg/workspace")

// Orchestrator sequences app deletion before profile deletion. One teardown
// walks the state machine
//
//	Idle -> ChildrenEnumerated -> ChildDeletesRequested -> Converging
//	     -> ParentDeletable -> ParentDeleted
//
// with the error exit Blocked when convergence ends with apps still
// non-terminal: the profile delete is refused rather than issued against a
// profile with live dependents.
type Orchestrator struct {
	dir     *Directory
	mut     *Mutator
	poller  *Poller
	log     zerolog.Logger
	rec     Recorder
	metrics Metrics
}

// NewOrchestrator wires a teardown orchestrator from its collaborators.
func NewOrchestrator(dir *Directory, mut *Mutator, poller *Poller, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		dir:    dir,
		mut:    mut,
		poller: poller,
		log:    log.With().Str("component", "teardown").Logger(),
	}
}

// WithRecorder attaches an audit recorder. Nil disables recording.
func (o *Orchestrator) WithRecorder(rec Recorder) *Orchestrator {
	o.rec = rec
	return o
}

// WithMetrics attaches a metrics sink. Nil disables collection.
func (o *Orchestrator) WithMetrics(metrics Metrics) *Orchestrator {
	o.metrics = metrics
	return o
}

// Teardown deletes every app owned by the profile, waits for convergence,
// and only then deletes the profile itself. Failed apps are logged and
// skipped, never retried indefinitely, and do not block the profile delete.
//
// The returned error is non-nil only for transport failures and context
// cancellation. A convergence timeout is not an error: it is reported as
// PhaseBlocked on the result, recoverable by invoking Teardown again later.
func (o *Orchestrator) Teardown(ctx context.Context, parent string) (*TeardownResult, error) {
	ctx, span := tracer.Start(ctx, "workspace.teardown")
	span.SetAttributes(attribute.String("profile", parent))
	defer span.End()

	start := time.Now()
	result := &TeardownResult{Parent: parent, Phase: PhaseIdle}

	runID := o.runStarted(ctx, "teardown", parent)
	var runErr error
	defer func() {
		o.runFinished(ctx, runID, string(result.Phase), runErr)
		if o.metrics != nil {
			o.metrics.RecordTeardown(string(result.Phase), time.Since(start).Seconds())
		}
		if runErr != nil {
			span.RecordError(runErr)
			span.SetStatus(codes.Error, runErr.Error())
		}
	}()

	// A profile that is already gone satisfies the teardown trivially: no
	// app deletes are issued and no redundant profile delete is sent.
	if _, err := o.dir.GetParent(ctx, parent); err != nil {
		if IsAbsent(err) {
			o.log.Info().Str("profile", parent).Msg("profile already absent, nothing to tear down")
			result.Phase = PhaseParentDeleted
			result.Outcome = &Outcome{}
			return result, nil
		}
		runErr = err
		return result, err
	}

	children, err := o.dir.ListChildren(ctx, parent)
	if err != nil {
		runErr = err
		return result, err
	}
	result.Phase = PhaseChildrenEnumerated
	o.log.Info().Str("profile", parent).Int("apps", len(children)).Msg("apps enumerated")

	// Issue every delete before polling anything. Apps already terminal or
	// already mid-deletion are skipped; their state satisfies the invariant
	// without another request. A rejected delete is recorded and the app
	// stays tracked: the control plane may still converge it within the
	// bound, and if not the profile is reported Blocked instead of crashing
	// the batch.
	for _, child := range children {
		if child.Status.IsTerminal() || child.Status == ChildStatusDeleting {
			continue
		}
		if err := o.mut.DeleteChild(ctx, parent, child.ChildRef); err != nil {
			if IsTransport(err) {
				runErr = err
				return result, err
			}
			o.log.Warn().Err(err).Str("app", child.String()).Msg("app delete rejected")
			o.runEvent(ctx, runID, "warning", child.String(), "app delete rejected: "+err.Error())
			if result.RequestFailures == nil {
				result.RequestFailures = make(map[ChildRef]error)
			}
			result.RequestFailures[child.ChildRef] = err
		}
	}
	result.Phase = PhaseChildDeletesRequested

	result.Phase = PhaseConverging
	outcome, err := o.poller.AwaitConvergence(ctx, parent, children)
	result.Outcome = outcome
	if err != nil {
		runErr = err
		return result, err
	}

	if !outcome.Converged() {
		result.Phase = PhaseBlocked
		o.log.Warn().
			Str("profile", parent).
			Int("pending", len(outcome.Pending)).
			Msg("teardown blocked, profile delete refused")
		o.runEvent(ctx, runID, "warning", parent, "teardown blocked with non-terminal apps")
		return result, nil
	}
	result.Phase = PhaseParentDeletable

	for _, ref := range outcome.Failed {
		o.log.Warn().Str("app", ref.String()).Msg("app ended Failed; does not block profile delete")
		o.runEvent(ctx, runID, "warning", ref.String(), "app ended in Failed status")
	}

	if err := o.mut.DeleteParent(ctx, parent); err != nil {
		runErr = err
		return result, err
	}
	result.Phase = PhaseParentDeleted
	o.log.Info().
		Str("profile", parent).
		Int("apps", outcome.Total()).
		Int("deleted", len(outcome.Deleted)).
		Int("failed", len(outcome.Failed)).
		Msg("profile delete issued")
	return result, nil
}

func (o *Orchestrator) runStarted(ctx context.Context, operation, target string) string {
	if o.rec == nil {
		return ""
	}
	runID, err := o.rec.RunStarted(ctx, operation, target)
	if err != nil {
		o.log.Warn().Err(err).Msg("audit run could not be opened")
		return ""
	}
	return runID
}

func (o *Orchestrator) runEvent(ctx context.Context, runID, level, resource, message string) {
	if o.rec == nil || runID == "" {
		return
	}
	if err := o.rec.RunEvent(ctx, runID, level, resource, message); err != nil {
		o.log.Warn().Err(err).Msg("audit event could not be recorded")
	}
}

func (o *Orchestrator) runFinished(ctx context.Context, runID, status string, runErr error) {
	if o.rec == nil || runID == "" {
		return
	}
	if err := o.rec.RunFinished(ctx, runID, status, runErr); err != nil {
		o.log.Warn().Err(err).Msg("audit run could not be closed")
	}
}
