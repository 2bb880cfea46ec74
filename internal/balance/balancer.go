// Package balance selects the least-loaded module server among a module's
// candidate endpoints.
//
// Load samples are obtained through a lightweight wire-protocol poll and
// cached per endpoint; an endpoint is re-polled no more often than the
// configured minimum interval. Balancing is best-effort and advisory:
// correctness of the pipeline never depends on the quality of the choice.
package balance

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/andy-wagner/gecco/types"
)

// ProbeFunc queries one endpoint for its current load scalar. Lower is
// better. Implementations must honor the context deadline.
type ProbeFunc func(ctx context.Context, ep types.Endpoint) (float64, error)

// Config holds balancer settings.
type Config struct {
	// MinPollInterval is the minimum time between load polls of the same
	// endpoint. Cached samples younger than this are reused.
	MinPollInterval time.Duration

	// PollTimeout bounds one load poll.
	PollTimeout time.Duration

	// Probe performs the load query. Required.
	Probe ProbeFunc
}

// sample is one cached load observation. Samples are immutable; a refresh
// stores a new pointer, so a read racing a refresh sees either the old or
// the new sample, never a torn one.
//
// ok=false records a failed poll: the endpoint stays excluded until its
// poll window elapses, then gets re-polled.
type sample struct {
	load     float64
	polledAt time.Time
	ok       bool
}

// Balancer caches per-endpoint load samples and picks the least-loaded
// candidate. It is process-lifetime state shared across runs, safe for
// concurrent use by any number of workers.
type Balancer struct {
	cfg     Config
	cache   *xsync.Map[string, *sample]
	logger  types.Logger
	metrics types.BalancerMetrics

	// now is stubbed in tests.
	now func() time.Time
}

// New creates a balancer.
//
// Parameters:
//   - cfg: Balancer settings; Probe is required
//   - logger: Logger for poll failures
//   - metrics: Collector for poll/selection metrics
func New(cfg Config, logger types.Logger, metrics types.BalancerMetrics) *Balancer {
	return &Balancer{
		cfg:     cfg,
		cache:   xsync.NewMap[string, *sample](),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Select returns the candidate with the lowest recently-observed load.
//
// A single candidate is returned immediately without polling. Otherwise
// every candidate whose cached sample is older than MinPollInterval is
// polled; candidates that fail the poll are excluded from selections
// until their poll window elapses, then retried, never permanently
// removed. Ties break by registration order, first candidate wins.
//
// Returns:
//   - types.Endpoint: The selected endpoint
//   - error: types.ErrNoServerAvailable if every candidate is currently
//     unavailable; the caller may degrade to an unranked choice
func (b *Balancer) Select(ctx context.Context, candidates []types.Endpoint) (types.Endpoint, error) {
	if len(candidates) == 0 {
		return types.Endpoint{}, types.ErrNoServerAvailable
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	var (
		best     types.Endpoint
		bestLoad float64
		found    bool
	)

	for _, ep := range candidates {
		s := b.freshSample(ctx, ep)
		if !s.ok {
			continue
		}

		if !found || s.load < bestLoad {
			best = ep
			bestLoad = s.load
			found = true
		}
	}

	if !found {
		return types.Endpoint{}, types.ErrNoServerAvailable
	}

	b.metrics.RecordSelection(best.Addr(), false)

	return best, nil
}

// freshSample returns the cached load sample for ep, polling first when
// the cached one is missing or older than MinPollInterval.
func (b *Balancer) freshSample(ctx context.Context, ep types.Endpoint) *sample {
	addr := ep.Addr()

	if s, ok := b.cache.Load(addr); ok && b.now().Sub(s.polledAt) < b.cfg.MinPollInterval {
		return s
	}

	pollCtx, cancel := context.WithTimeout(ctx, b.cfg.PollTimeout)
	defer cancel()

	load, err := b.cfg.Probe(pollCtx, ep)
	if err != nil {
		b.metrics.RecordPoll(addr, false)
		b.logger.Warn("load poll failed", "endpoint", addr, "error", err)

		s := &sample{polledAt: b.now(), ok: false}
		b.cache.Store(addr, s)

		return s
	}

	s := &sample{load: load, polledAt: b.now(), ok: true}
	b.cache.Store(addr, s)
	b.metrics.RecordPoll(addr, true)
	b.logger.Debug("load poll", "endpoint", addr, "load", load)

	return s
}
