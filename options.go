package gecco

import (
	"context"

	"github.com/andy-wagner/gecco/types"
)

// Option configures a Corrector with optional dependencies.
type Option func(*correctorOptions)

// correctorOptions holds optional Corrector configuration.
type correctorOptions struct {
	logger  types.Logger
	metrics types.MetricsCollector
	hooks   *types.Hooks
	prober  LoadProber
}

// LoadProber queries one endpoint for its current load scalar; lower is
// better. The default prober performs a wire.LoadQuery round trip.
type LoadProber func(ctx context.Context, ep Endpoint) (float64, error)

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (see logging.NewSlog)
//
// Returns:
//   - Option: Functional option for NewCorrector
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	corrector, _ := gecco.NewCorrector(&cfg, gecco.WithLogger(logger))
func WithLogger(logger types.Logger) Option {
	return func(o *correctorOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewCorrector
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "gecco")
//	corrector, _ := gecco.NewCorrector(&cfg, gecco.WithMetrics(collector))
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *correctorOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewCorrector
//
// Example:
//
//	hooks := &gecco.Hooks{
//	    OnItemDone: func(ctx context.Context, moduleID, unitID string, err error) error {
//	        return recordItem(moduleID, unitID, err)
//	    },
//	}
//	corrector, _ := gecco.NewCorrector(&cfg, gecco.WithHooks(hooks))
func WithHooks(hooks *types.Hooks) Option {
	return func(o *correctorOptions) {
		o.hooks = hooks
	}
}

// WithLoadProber sets a custom load prober, replacing the default
// wire.LoadQuery round trip. Mainly useful for tests and for deployments
// exposing load through a side channel.
//
// Parameters:
//   - prober: LoadProber implementation
//
// Returns:
//   - Option: Functional option for NewCorrector
func WithLoadProber(prober LoadProber) Option {
	return func(o *correctorOptions) {
		o.prober = prober
	}
}
