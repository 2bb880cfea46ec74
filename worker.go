package gecco

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/andy-wagner/gecco/internal/dispatch"
	"github.com/andy-wagner/gecco/types"
	"github.com/andy-wagner/gecco/wire"
)

// runWorker processes work items for one pool goroutine during one run.
//
// Each worker owns a private client per remote endpoint, so the wire layer
// never needs locking; clients are created on first use and live until the
// worker exits at the drain barrier.
type runWorker struct {
	id      int
	c       *Corrector
	editor  types.Editor
	failed  *atomic.Int64
	clients map[string]*wire.Client
}

var _ dispatch.Worker = (*runWorker)(nil)

func newRunWorker(id int, c *Corrector, editor types.Editor, failed *atomic.Int64) *runWorker {
	return &runWorker{
		id:      id,
		c:       c,
		editor:  editor,
		failed:  failed,
		clients: make(map[string]*wire.Client),
	}
}

// Process executes one work item to completion, including applying its
// edit. Failures are counted and logged, never propagated: a single module
// failure must not starve the pipeline.
func (w *runWorker) Process(ctx context.Context, item dispatch.Item) {
	moduleID := item.Module.ID()
	unitID := item.Unit.ID()

	start := time.Now()
	err := w.process(ctx, item)
	w.c.metrics.RecordItemDuration(moduleID, time.Since(start).Seconds())
	w.c.metrics.RecordItemProcessed(moduleID, err == nil)

	if err != nil {
		w.failed.Add(1)
		w.c.logger.Warn("work item failed",
			"worker", w.id, "module", moduleID, "unit", unitID, "error", err)
	}

	if herr := w.c.hooks.OnItemDone(ctx, moduleID, unitID, err); herr != nil {
		w.c.logger.Warn("item hook failed", "error", herr)
	}
}

func (w *runWorker) process(ctx context.Context, item dispatch.Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %q panicked: %v", item.Module.ID(), r)
		}
	}()

	if item.Module.Local() {
		return item.Module.Run(ctx, item.Unit, w.editor)
	}

	return w.processRemote(ctx, item)
}

// processRemote picks an endpoint through the balancer, degrading to the
// first-registered endpoint when every candidate failed its load poll, and
// retries a failed round trip once; the client reconnects implicitly.
func (w *runWorker) processRemote(ctx context.Context, item dispatch.Item) error {
	endpoints := item.Module.Endpoints()

	ep, err := w.c.balancer.Select(ctx, endpoints)
	if err != nil {
		if !errors.Is(err, types.ErrNoServerAvailable) || len(endpoints) == 0 {
			return err
		}

		// Every candidate failed its poll; fall back to the first endpoint.
		ep = endpoints[0]
		w.c.metrics.RecordSelection(ep.Addr(), true)
		w.c.logger.Warn("no ranked server available, using first endpoint",
			"module", item.Module.ID(), "endpoint", ep.Addr())

		if herr := w.c.hooks.OnError(ctx, err); herr != nil {
			w.c.logger.Warn("error hook failed", "error", herr)
		}
	}

	client := w.client(ep)

	err = item.Module.RunRemote(ctx, client, item.Unit, w.editor)
	if err != nil && ctx.Err() == nil {
		w.c.logger.Debug("remote call failed, retrying once",
			"module", item.Module.ID(), "endpoint", ep.Addr(), "error", err)
		err = item.Module.RunRemote(ctx, client, item.Unit, w.editor)
	}

	return err
}

// client returns the worker's cached client for ep, creating it on first
// use.
func (w *runWorker) client(ep types.Endpoint) *wire.Client {
	addr := ep.Addr()
	if client, ok := w.clients[addr]; ok {
		return client
	}

	client := wire.NewClient(ep,
		wire.WithClientLogger(w.c.logger),
		wire.WithClientMetrics(w.c.metrics),
		wire.WithDialTimeout(w.c.cfg.DialTimeout),
		wire.WithRequestTimeout(w.c.cfg.RequestTimeout),
	)
	w.clients[addr] = client

	return client
}

// Close releases the worker's cached clients.
func (w *runWorker) Close() {
	for _, client := range w.clients {
		_ = client.Close()
	}
}
