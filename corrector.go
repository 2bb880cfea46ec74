package gecco

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andy-wagner/gecco/internal/balance"
	"github.com/andy-wagner/gecco/internal/dispatch"
	"github.com/andy-wagner/gecco/internal/hooks"
	"github.com/andy-wagner/gecco/internal/logging"
	"github.com/andy-wagner/gecco/internal/metrics"
	"github.com/andy-wagner/gecco/types"
	"github.com/andy-wagner/gecco/wire"
)

// Report aggregates the outcome of one correction run.
type Report struct {
	// Items is the number of work items dispatched.
	Items int

	// Failed is the number of work items that failed; their units carry no
	// edit from the failing module, every other item was still processed.
	Failed int

	// FinishErrors is the number of module Finish callbacks that errored.
	// Finish errors never abort the run.
	FinishErrors int
}

// Corrector is the top-level coordinator of the correction pipeline.
//
// A Corrector is created once, accumulates modules through Register, and is
// then invoked per document with Run. Each run gets a fresh dispatch queue,
// worker pool, and mutation lock; the load balancer and its per-endpoint
// load cache live for the corrector's lifetime so poll cost is amortized
// across runs.
//
// Runs are serialized: a second Run while one is active fails with
// ErrRunInProgress.
type Corrector struct {
	cfg      Config
	logger   types.Logger
	metrics  types.MetricsCollector
	hooks    types.Hooks
	balancer *balance.Balancer

	mu      sync.Mutex
	modules []types.Module
	ids     map[string]struct{}

	state   atomic.Int32
	running atomic.Bool
}

// NewCorrector creates a corrector from the given configuration.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults, then
//     validated (modified in place)
//   - opts: Functional options (WithLogger, WithMetrics, WithHooks,
//     WithLoadProber)
//
// Returns:
//   - *Corrector: The corrector, in StateIdle
//   - error: ErrInvalidConfig when validation fails
func NewCorrector(cfg *Config, opts ...Option) (*Corrector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	SetDefaults(cfg)

	options := correctorOptions{
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if err := cfg.ValidateWithWarnings(options.logger); err != nil {
		return nil, err
	}

	c := &Corrector{
		cfg:     *cfg,
		logger:  options.logger,
		metrics: options.metrics,
		hooks:   hooks.NewNop(),
		ids:     make(map[string]struct{}),
	}
	if options.hooks != nil {
		c.hooks = mergeHooks(*options.hooks)
	}

	prober := options.prober
	if prober == nil {
		prober = c.defaultProber
	}

	c.balancer = balance.New(balance.Config{
		MinPollInterval: cfg.MinPollInterval,
		PollTimeout:     cfg.PollTimeout,
		Probe:           balance.ProbeFunc(prober),
	}, c.logger, c.metrics)

	return c, nil
}

// mergeHooks fills nil callbacks with no-ops so call sites need no nil
// checks.
func mergeHooks(h types.Hooks) types.Hooks {
	nop := hooks.NewNop()
	if h.OnStateChanged == nil {
		h.OnStateChanged = nop.OnStateChanged
	}
	if h.OnItemDone == nil {
		h.OnItemDone = nop.OnItemDone
	}
	if h.OnError == nil {
		h.OnError = nop.OnError
	}

	return h
}

// Register adds a module to the registry. Modules are dispatched in
// registration order during a run.
//
// Parameters:
//   - m: Module to register
//
// Returns:
//   - error: ErrDuplicateModule for an already-registered ID, or
//     ErrModuleLocality when the locality flag contradicts the endpoint
//     list
func (c *Corrector) Register(m types.Module) error {
	if m.Local() != (len(m.Endpoints()) == 0) {
		return fmt.Errorf("%w: module %q: local=%t with %d endpoints",
			ErrModuleLocality, m.ID(), m.Local(), len(m.Endpoints()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.ids[m.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, m.ID())
	}

	c.ids[m.ID()] = struct{}{}
	c.modules = append(c.modules, m)
	c.logger.Info("module registered",
		"module", m.ID(), "unit", m.Unit().String(), "local", m.Local())

	return nil
}

// Modules returns the registered modules in registration order.
func (c *Corrector) Modules() []types.Module {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.Module, len(c.modules))
	copy(out, c.modules)

	return out
}

// State returns the current run state. StateIdle between runs.
func (c *Corrector) State() types.State {
	return types.State(c.state.Load())
}

// Run corrects one document: initializes every module, dispatches one work
// item per (module, matching unit) pair across the worker pool, waits for
// the drain barrier, runs the module finalizers sequentially, and saves
// the document.
//
// Per-item failures and Finish errors never abort the run; they are
// counted in the Report. Only module Init failures and the final Save
// abort with an error.
//
// Parameters:
//   - ctx: Context passed through to module Run/RunRemote calls
//   - doc: Document to correct
//
// Returns:
//   - Report: Aggregate item/failure counts, also returned alongside a
//     Save error
//   - error: ErrRunInProgress, ErrDocumentRequired, ErrModuleRequired, a
//     wrapped Init failure, or a wrapped Save failure
func (c *Corrector) Run(ctx context.Context, doc types.Document) (Report, error) {
	if doc == nil {
		return Report{}, ErrDocumentRequired
	}

	modules := c.Modules()
	if len(modules) == 0 {
		return Report{}, ErrModuleRequired
	}

	if !c.running.CompareAndSwap(false, true) {
		return Report{}, ErrRunInProgress
	}
	defer c.running.Store(false)
	defer c.state.Store(int32(types.StateIdle))

	start := time.Now()
	defer func() {
		c.metrics.RecordRunDuration(time.Since(start).Seconds())
	}()

	stateSince := start
	setState := func(next types.State) {
		prev := types.State(c.state.Swap(int32(next)))
		now := time.Now()
		c.metrics.RecordStateTransition(prev, next, now.Sub(stateSince).Seconds())
		stateSince = now
		c.logger.Debug("state transition", "from", prev.String(), "to", next.String())

		if err := c.hooks.OnStateChanged(ctx, prev, next); err != nil {
			c.logger.Warn("state hook failed", "error", err)
		}
	}

	setState(types.StateInitializing)
	for _, m := range modules {
		if err := m.Init(doc); err != nil {
			return Report{}, fmt.Errorf("init module %q: %w", m.ID(), err)
		}
	}

	setState(types.StateDispatching)

	queue := dispatch.NewQueue()
	ed := newEditor(doc)

	var failed atomic.Int64
	pool := dispatch.NewPool(c.cfg.Workers, queue, func(id int) dispatch.Worker {
		return newRunWorker(id, c, ed, &failed)
	}, c.logger)
	pool.Start(ctx)

	items := 0
	for _, m := range modules {
		for _, unit := range doc.Units(m.Unit()) {
			if err := queue.Enqueue(dispatch.Item{Module: m, Unit: unit}); err != nil {
				// Cannot happen: the producer owns the queue until Close.
				c.logger.Error("enqueue failed", "module", m.ID(), "error", err)

				continue
			}
			items++
		}
	}
	c.metrics.RecordItemsDispatched(items)
	c.metrics.RecordQueueDepth(queue.Len())
	c.logger.Info("work items dispatched", "items", items, "workers", c.cfg.Workers)

	setState(types.StateDraining)
	queue.Close()
	pool.Wait()
	c.metrics.RecordQueueDepth(0)

	report := Report{
		Items:  items,
		Failed: int(failed.Load()),
	}

	setState(types.StateFinalizing)
	for _, m := range modules {
		if err := m.Finish(doc); err != nil {
			report.FinishErrors++
			c.logger.Warn("module finish failed", "module", m.ID(), "error", err)

			if herr := c.hooks.OnError(ctx, err); herr != nil {
				c.logger.Warn("error hook failed", "error", herr)
			}
		}
	}

	if err := doc.Save(); err != nil {
		return report, fmt.Errorf("save document: %w", err)
	}
	setState(types.StatePersisted)

	c.logger.Info("run complete",
		"items", report.Items,
		"failed", report.Failed,
		"finish_errors", report.FinishErrors,
		"duration", time.Since(start))

	return report, nil
}

// defaultProber performs one wire.LoadQuery round trip against ep and
// parses the numeric reply.
func (c *Corrector) defaultProber(ctx context.Context, ep types.Endpoint) (float64, error) {
	client := wire.NewClient(ep,
		wire.WithClientLogger(c.logger),
		wire.WithClientMetrics(c.metrics),
		wire.WithDialTimeout(c.cfg.DialTimeout),
		wire.WithRequestTimeout(c.cfg.PollTimeout),
	)
	defer client.Close()

	resp, err := client.Communicate(ctx, wire.LoadQuery)
	if err != nil {
		return 0, err
	}

	load, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, fmt.Errorf("parse load reply %q from %s: %w", resp, ep.Addr(), err)
	}

	return load, nil
}
