package workspace

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultPollInterval is the wait between status re-queries.
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxTicks bounds one convergence poll. With the default interval
	// that is five minutes of polling before the caller is told Blocked.
	DefaultMaxTicks = 60
)

// PollOptions bounds a convergence poll. The control plane gives no
// completion signal, so the loop must carry an explicit bound to guarantee
// termination even when a resource never converges.
type PollOptions struct {
	// Interval is the wait between ticks. <= 0 selects DefaultPollInterval.
	Interval time.Duration

	// MaxTicks is the maximum number of status rounds. <= 0 selects
	// DefaultMaxTicks.
	MaxTicks int
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxTicks <= 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	return o
}

// Poller re-queries resource status until every tracked resource is terminal
// or the bound elapses.
type Poller struct {
	dir     *Directory
	opts    PollOptions
	log     zerolog.Logger
	metrics Metrics
}

// NewPoller creates a poller over the given directory.
func NewPoller(dir *Directory, opts PollOptions, log zerolog.Logger) *Poller {
	return &Poller{
		dir:  dir,
		opts: opts.withDefaults(),
		log:  log.With().Str("component", "poller").Logger(),
	}
}

// WithMetrics attaches a metrics sink. Nil disables collection.
func (p *Poller) WithMetrics(metrics Metrics) *Poller {
	p.metrics = metrics
	return p
}

// AwaitConvergence polls the given apps until each reaches a terminal status
// or the bound is hit. Apps already terminal at entry are never re-queried;
// once an app turns terminal it leaves the working set (statuses are
// monotonic: a terminal app does not revert). An app that vanishes from the
// directory mid-poll counts as Deleted.
//
// Bound exhaustion is reported through Outcome.Pending, not as an error.
// Only transport failures and context cancellation return an error, carrying
// the partial outcome observed so far.
func (p *Poller) AwaitConvergence(ctx context.Context, parent string, children []ChildResource) (*Outcome, error) {
	outcome := &Outcome{}
	var working []ChildRef
	for _, c := range children {
		switch {
		case c.Status == ChildStatusDeleted:
			outcome.Deleted = append(outcome.Deleted, c.ChildRef)
		case c.Status == ChildStatusFailed:
			outcome.Failed = append(outcome.Failed, c.ChildRef)
		default:
			working = append(working, c.ChildRef)
		}
	}
	if len(working) == 0 {
		return outcome, nil
	}

	ticks := 0
	defer func() {
		if p.metrics != nil {
			p.metrics.RecordPollTicks(ticks)
		}
	}()

	for ticks = 1; ticks <= p.opts.MaxTicks; ticks++ {
		var still []ChildRef
		for i, ref := range working {
			status, err := p.dir.GetChildStatus(ctx, parent, ref)
			if err != nil {
				outcome.Pending = append(still, working[i:]...)
				return outcome, err
			}
			switch status {
			case ChildStatusDeleted:
				outcome.Deleted = append(outcome.Deleted, ref)
			case ChildStatusFailed:
				outcome.Failed = append(outcome.Failed, ref)
			default:
				still = append(still, ref)
			}
		}
		working = still

		p.log.Info().
			Str("parent", parent).
			Int("tick", ticks).
			Int("pending", len(working)).
			Int("deleted", len(outcome.Deleted)).
			Int("failed", len(outcome.Failed)).
			Msg("convergence tick")

		if len(working) == 0 {
			return outcome, nil
		}
		if ticks == p.opts.MaxTicks {
			break
		}

		select {
		case <-time.After(p.opts.Interval):
		case <-ctx.Done():
			outcome.Pending = working
			return outcome, ctx.Err()
		}
	}

	outcome.Pending = working
	p.log.Warn().
		Str("parent", parent).
		Int("pending", len(working)).
		Int("max_ticks", p.opts.MaxTicks).
		Msg("polling bound exhausted before convergence")
	return outcome, nil
}

// AwaitParentAbsent polls until the profile disappears from the directory or
// the bound elapses. Returns true once the profile is absent. Profile
// deletion is asynchronous like app deletion, and a recreate under the same
// name is refused while the old profile is still tearing down.
func (p *Poller) AwaitParentAbsent(ctx context.Context, name string) (bool, error) {
	for tick := 1; tick <= p.opts.MaxTicks; tick++ {
		_, err := p.dir.GetParent(ctx, name)
		if err != nil {
			if IsAbsent(err) {
				return true, nil
			}
			return false, err
		}

		p.log.Info().Str("parent", name).Int("tick", tick).Msg("waiting for profile teardown")

		if tick == p.opts.MaxTicks {
			break
		}
		select {
		case <-time.After(p.opts.Interval):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return false, nil
}
