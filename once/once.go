// Package once runs an initializer exactly once across concurrent callers.
//
// Unlike sync.Once a failed initializer does not count: the flag goes back
// to unstarted and the next caller retries.
package once

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gitlab.com/rogovks/syncprim/cond"
	"gitlab.com/rogovks/syncprim/metrics"
	"gitlab.com/rogovks/syncprim/mutex"
)

type state int

const (
	unstarted state = iota
	inProgress
	done
)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*options)

// WithLogger sets the logger for failed initializers. nil disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Flag is a run-exactly-once latch with retry on failure.
// The zero value is ready to use and logs nothing.
//
// A Flag must not be copied after first use.
type Flag struct {
	opts options

	isDone atomic.Bool

	once  sync.Once
	mu    mutex.Mutex
	c     *cond.Cond
	state state
}

func New(opts ...Option) *Flag {
	return &Flag{opts: newOptions(opts)}
}

func (f *Flag) init() {
	f.once.Do(func() {
		f.c = cond.New(&f.mu)
		if f.opts.logger == nil {
			f.opts.logger = zap.NewNop()
		}
	})
}

// Do calls fn if and only if no earlier call to fn through f has succeeded.
//
// Concurrent callers block while another caller runs fn. If fn returns an
// error, Do returns it to the caller that ran fn, the flag reverts to
// unstarted and one of the blocked callers runs its own fn next. If fn
// panics the flag reverts the same way and the panic propagates.
//
// A nil error means fn has completed successfully, in this call or an
// earlier one, and its effects are visible to the caller.
//
// Calling Do on f from inside fn deadlocks.
func (f *Flag) Do(fn func() error) error {
	if f.isDone.Load() {
		return nil
	}
	f.init()

	f.mu.Lock()
	f.c.Wait(func() bool { return f.state != inProgress })
	if f.state == done {
		f.mu.Unlock()
		return nil
	}
	f.state = inProgress
	f.mu.Unlock()

	return f.run(fn)
}

func (f *Flag) run(fn func() error) (err error) {
	result := metrics.ResultPanic
	defer func() {
		f.mu.Lock()
		if result == metrics.ResultOK {
			f.state = done
			f.isDone.Store(true)
		} else {
			f.state = unstarted
		}
		f.c.Broadcast()
		f.mu.Unlock()

		f.opts.metrics.OnceRun(result)
	}()

	// fn выполняется без f.mu: остальные вызовы ждут на условии, а не на замке
	if err = fn(); err != nil {
		result = metrics.ResultError
		f.opts.logger.Warn("initializer failed, flag reset", zap.Error(err))
		return err
	}
	result = metrics.ResultOK
	return nil
}

// Done reports whether an initializer has completed successfully.
func (f *Flag) Done() bool {
	return f.isDone.Load()
}

// Value is a lazily constructed value shared by every caller of Get.
// The zero value is ready to use.
type Value[T any] struct {
	flag  Flag
	value T
}

func NewValue[T any](opts ...Option) *Value[T] {
	return &Value[T]{flag: Flag{opts: newOptions(opts)}}
}

// Get returns the value, constructing it with init on the first successful
// call. A failing init leaves the value unset and its error is returned;
// a later Get retries with its own init.
func (v *Value[T]) Get(init func() (T, error)) (T, error) {
	err := v.flag.Do(func() error {
		val, err := init()
		if err != nil {
			return err
		}
		v.value = val
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.value, nil
}

// Loaded reports whether the value has been constructed.
func (v *Value[T]) Loaded() bool {
	return v.flag.Done()
}
