// Package harness drives the primitives from many goroutines and checks the
// property each scenario demonstrates.
package harness

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"gitlab.com/rogovks/syncprim/metrics"
	"gitlab.com/rogovks/syncprim/multilock"
)

// Runner runs scenarios with a fixed config.
type Runner struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewRunner creates a Runner. log and m may be nil.
func NewRunner(cfg Config, log *zap.Logger, m *metrics.Metrics) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log, metrics: m}
}

func (r *Runner) acquirer() *multilock.Acquirer {
	return multilock.New(
		multilock.WithLogger(r.log.Named("multilock")),
		multilock.WithMetrics(r.metrics),
		multilock.WithBackoff(
			r.cfg.Multilock.YieldRetries,
			time.Duration(r.cfg.Multilock.MinBackoff),
			time.Duration(r.cfg.Multilock.MaxBackoff),
		),
	)
}

type scenario func(ctx context.Context, r *Runner) ([]zap.Field, error)

var scenarios = map[string]scenario{
	"swap": func(ctx context.Context, r *Runner) ([]zap.Field, error) {
		rep, err := r.Swap(ctx)
		return []zap.Field{zap.Int("swaps", rep.Swaps), zap.Int("x1", rep.X1), zap.Int("x2", rep.X2)}, err
	},
	"queue": func(ctx context.Context, r *Runner) ([]zap.Field, error) {
		rep, err := r.Queue(ctx)
		return []zap.Field{zap.Ints("popped", rep.Popped)}, err
	},
	"once": func(ctx context.Context, r *Runner) ([]zap.Field, error) {
		rep, err := r.Once(ctx)
		return []zap.Field{zap.Int("inits", rep.Inits), zap.Int("value", rep.Value), zap.Int("callers", rep.Callers)}, err
	},
	"turns": func(ctx context.Context, r *Runner) ([]zap.Field, error) {
		rep, err := r.Turns(ctx)
		return []zap.Field{zap.Int("a", rep.A), zap.Int("b", rep.B), zap.String("head", rep.Head(16))}, err
	},
	"counter": func(ctx context.Context, r *Runner) ([]zap.Field, error) {
		rep, err := r.Counter(ctx)
		return []zap.Field{zap.Int("final", rep.Final), zap.Int("reads", rep.Reads)}, err
	},
	"list": func(ctx context.Context, r *Runner) ([]zap.Field, error) {
		rep, err := r.List(ctx)
		return []zap.Field{zap.Int("size", rep.Size), zap.Ints("found", rep.Found)}, err
	},
}

// Scenarios returns the scenario names in a stable order.
func Scenarios() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run runs the named scenario and logs its report.
func (r *Runner) Run(ctx context.Context, name string) error {
	s, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}

	log := r.log.With(zap.String("scenario", name))
	log.Info("scenario started")
	start := time.Now()

	fields, err := s(ctx, r)
	fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Error("scenario failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("scenario %s: %w", name, err)
	}
	log.Info("scenario finished", fields...)
	return nil
}

// RunAll runs every scenario in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context) error {
	for _, name := range Scenarios() {
		if err := r.Run(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
