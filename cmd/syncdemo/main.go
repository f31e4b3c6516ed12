package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gitlab.com/rogovks/syncprim/internal/harness"
	"gitlab.com/rogovks/syncprim/metrics"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	configPath  string
	verbose     bool
	metricsAddr string

	cfg    harness.Config
	log    *zap.Logger
	reg    *prometheus.Registry
	runner *harness.Runner
	stop   func()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := harness.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = harness.Load(a.configPath); err != nil {
			return err
		}
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	a.log = log.With(zap.String("run_id", runID.String()))

	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(a.reg)

	a.stop = func() {}
	if a.metricsAddr != "" {
		a.stop = serveMetrics(a.metricsAddr, a.reg, a.log)
	}

	a.runner = harness.NewRunner(cfg, a.log, m)
	return nil
}

func (a *app) teardown() {
	if a.stop != nil {
		a.stop()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// intFlags maps per-scenario flags to config fields.
var intFlags = []struct {
	name  string
	usage string
	field func(cfg *harness.Config) *int
}{
	{"iterations", "swaps per worker", func(c *harness.Config) *int { return &c.SwapIterations }},
	{"items", "values pushed through the queue", func(c *harness.Config) *int { return &c.QueueItems }},
	{"workers", "goroutines racing for the lazy resource", func(c *harness.Config) *int { return &c.OnceWorkers }},
	{"actions", "total alternating actions", func(c *harness.Config) *int { return &c.TurnActions }},
	{"writers", "counter writer goroutines", func(c *harness.Config) *int { return &c.CounterWriters }},
	{"increments", "increments per writer", func(c *harness.Config) *int { return &c.CounterIncrements }},
	{"readers", "counter reader goroutines", func(c *harness.Config) *int { return &c.CounterReaders }},
	{"adders", "list adder goroutines", func(c *harness.Config) *int { return &c.ListAdders }},
	{"adds", "values added by each adder", func(c *harness.Config) *int { return &c.ListAdds }},
	{"finders", "list finder goroutines", func(c *harness.Config) *int { return &c.ListFinders }},
}

// applyFlags copies explicitly set flags over the config.
func applyFlags(fs *pflag.FlagSet, cfg *harness.Config) error {
	for _, f := range intFlags {
		if fs.Lookup(f.name) == nil || !fs.Changed(f.name) {
			continue
		}
		v, err := fs.GetInt(f.name)
		if err != nil {
			return err
		}
		*f.field(cfg) = v
	}
	return nil
}

func scenarioFlags(name string) []string {
	switch name {
	case "swap":
		return []string{"iterations"}
	case "queue":
		return []string{"items"}
	case "once":
		return []string{"workers"}
	case "turns":
		return []string{"actions"}
	case "counter":
		return []string{"writers", "increments", "readers"}
	case "list":
		return []string{"adders", "adds", "finders"}
	default:
		return nil
	}
}

var descriptions = map[string]string{
	"swap":    "Swap two objects from two goroutines locking in opposite order",
	"queue":   "Hand values from a producer to a consumer through a blocking queue",
	"once":    "Race many goroutines for a lazily built shared resource",
	"turns":   "Print A and B from two goroutines in strict alternation",
	"counter": "Increment a reader/writer counter while readers watch it",
	"list":    "Add to and search a mutex-guarded list concurrently",
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "syncdemo",
		Short:         "Exercise the synchronization primitives from many goroutines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to YAML config")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "development logging")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	for _, name := range harness.Scenarios() {
		cmd := &cobra.Command{
			Use:   name,
			Short: descriptions[name],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				defer a.teardown()
				return a.runner.Run(cmd.Context(), name)
			},
		}
		for _, flagName := range scenarioFlags(name) {
			for _, f := range intFlags {
				if f.name == flagName {
					cmd.Flags().Int(f.name, 0, f.usage)
				}
			}
		}
		root.AddCommand(cmd)
	}

	root.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run every scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.teardown()
			return a.runner.RunAll(cmd.Context())
		},
	})

	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "syncdemo: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
