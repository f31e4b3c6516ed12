package harness

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// Config holds the scenario sizes.
type Config struct {
	SwapIterations int `yaml:"swap_iterations"`

	QueueItems int `yaml:"queue_items"`

	OnceWorkers int `yaml:"once_workers"`

	TurnActions int `yaml:"turn_actions"`

	CounterWriters    int `yaml:"counter_writers"`
	CounterIncrements int `yaml:"counter_increments"`
	CounterReaders    int `yaml:"counter_readers"`

	ListAdders  int `yaml:"list_adders"`
	ListAdds    int `yaml:"list_adds"`
	ListFinders int `yaml:"list_finders"`

	Multilock MultilockConfig `yaml:"multilock"`
}

// MultilockConfig tunes the backoff of the acquirer used by swap.
type MultilockConfig struct {
	YieldRetries int      `yaml:"yield_retries"`
	MinBackoff   Duration `yaml:"min_backoff"`
	MaxBackoff   Duration `yaml:"max_backoff"`
}

// Duration is a time.Duration written in YAML as "1ms", "250us" etc.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the sizes the scenarios run with when nothing overrides them.
func Default() Config {
	return Config{
		SwapIterations:    10000,
		QueueItems:        10,
		OnceWorkers:       100,
		TurnActions:       1000,
		CounterWriters:    2,
		CounterIncrements: 1000,
		CounterReaders:    4,
		ListAdders:        10,
		ListAdds:          1000,
		ListFinders:       5,
		Multilock: MultilockConfig{
			YieldRetries: 4,
			MinBackoff:   Duration(time.Microsecond),
			MaxBackoff:   Duration(time.Millisecond),
		},
	}
}

// Load reads a YAML config from path on top of Default.
// An empty file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every field that is out of range.
func (c Config) Validate() error {
	var err error
	positive := func(name string, v int) {
		if v <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	positive("swap_iterations", c.SwapIterations)
	positive("queue_items", c.QueueItems)
	positive("once_workers", c.OnceWorkers)
	positive("turn_actions", c.TurnActions)
	positive("counter_writers", c.CounterWriters)
	positive("counter_increments", c.CounterIncrements)
	positive("list_adders", c.ListAdders)
	positive("list_adds", c.ListAdds)

	if c.CounterReaders < 0 {
		err = multierr.Append(err, fmt.Errorf("counter_readers must not be negative, got %d", c.CounterReaders))
	}
	if c.ListFinders < 0 {
		err = multierr.Append(err, fmt.Errorf("list_finders must not be negative, got %d", c.ListFinders))
	}
	if c.Multilock.YieldRetries < 0 {
		err = multierr.Append(err, errors.New("multilock.yield_retries must not be negative"))
	}
	if c.Multilock.MaxBackoff < c.Multilock.MinBackoff {
		err = multierr.Append(err, errors.New("multilock.max_backoff must not be less than min_backoff"))
	}

	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
