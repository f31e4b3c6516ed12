// Package multilock acquires a set of locks all-or-nothing.
//
// Two goroutines that need the same locks may list them in any order:
// AcquireAll only ever blocks between attempts, never while holding part of
// the set, so the hold-and-wait cycle that deadlocks nested Lock calls
// cannot form.
//
//	h := multilock.LockAll(&a.mu, &b.mu)
//	defer h.Release()
//	a.v, b.v = b.v, a.v
package multilock

//go:generate mockgen -destination=../internal/mocks/mock_trylocker.go -package=mocks . TryLocker

import (
	"errors"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"gitlab.com/rogovks/syncprim/metrics"
)

// ErrNoLocks is the panic value of AcquireAll called with an empty set.
var ErrNoLocks = errors.New("multilock: empty lock set")

// TryLocker is a lock that supports non-blocking acquisition.
// *mutex.Mutex and *sync.Mutex implement it.
//
// Values passed to AcquireAll must be comparable; pointers always are.
type TryLocker interface {
	TryLock() bool
	Unlock()
}

const (
	defaultYieldRetries = 4
	defaultMinBackoff   = time.Microsecond
	defaultMaxBackoff   = time.Millisecond

	// первый отчёт о затянувшемся захвате, дальше - на каждой степени двойки
	contentionReport = 64
)

type options struct {
	clock        clockwork.Clock
	logger       *zap.Logger
	metrics      *metrics.Metrics
	yieldRetries int
	minBackoff   time.Duration
	maxBackoff   time.Duration
}

type Option func(*options)

// WithClock sets the clock used for backoff sleeps.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger for contention reports. nil disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBackoff configures the pause between failed attempts. The first
// yieldRetries failures only yield the processor; later ones sleep a random
// duration from [d/2, d], where d starts at minBackoff and doubles up to
// maxBackoff.
func WithBackoff(yieldRetries int, minBackoff, maxBackoff time.Duration) Option {
	return func(o *options) {
		o.yieldRetries = yieldRetries
		o.minBackoff = minBackoff
		o.maxBackoff = maxBackoff
	}
}

// Acquirer acquires lock sets all-or-nothing. It keeps no per-call state and
// is safe for concurrent use.
type Acquirer struct {
	opts options
}

func New(opts ...Option) *Acquirer {
	o := options{
		clock:        clockwork.NewRealClock(),
		logger:       zap.NewNop(),
		yieldRetries: defaultYieldRetries,
		minBackoff:   defaultMinBackoff,
		maxBackoff:   defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.minBackoff <= 0 {
		o.minBackoff = defaultMinBackoff
	}
	if o.maxBackoff < o.minBackoff {
		o.maxBackoff = o.minBackoff
	}
	return &Acquirer{opts: o}
}

var defaultAcquirer = New()

// LockAll acquires locks with the default Acquirer.
func LockAll(locks ...TryLocker) *Hold {
	return defaultAcquirer.AcquireAll(locks...)
}

// AcquireAll blocks until every lock in locks is held by the caller and
// returns the Hold that releases them. Duplicates are acquired once.
//
// Each attempt calls TryLock on the locks in order. The first failure
// releases whatever this attempt already took, backs off and restarts from
// the first lock.
func (a *Acquirer) AcquireAll(locks ...TryLocker) *Hold {
	set := dedup(locks)
	if len(set) == 0 {
		panic(ErrNoLocks)
	}

	for attempt := 0; ; attempt++ {
		if tryAll(set) {
			a.opts.metrics.MultilockAcquired()
			return &Hold{locks: set}
		}

		a.opts.metrics.MultilockBackoff()
		failed := attempt + 1
		if failed >= contentionReport && failed&(failed-1) == 0 {
			a.opts.logger.Debug("lock set still contended",
				zap.Int("locks", len(set)),
				zap.Int("attempts", failed))
		}
		a.backoff(failed)
	}
}

func tryAll(set []TryLocker) bool {
	for i, l := range set {
		if l.TryLock() {
			continue
		}
		// откатываем частичный захват
		for j := i - 1; j >= 0; j-- {
			set[j].Unlock()
		}
		return false
	}
	return true
}

func (a *Acquirer) backoff(failed int) {
	if failed <= a.opts.yieldRetries {
		runtime.Gosched()
		return
	}

	d := a.opts.minBackoff
	for shift := failed - a.opts.yieldRetries - 1; shift > 0 && d < a.opts.maxBackoff; shift-- {
		d *= 2
	}
	d = min(d, a.opts.maxBackoff)

	half := d / 2
	a.opts.clock.Sleep(half + rand.N(d-half+1))
}

func dedup(locks []TryLocker) []TryLocker {
	set := make([]TryLocker, 0, len(locks))
outer:
	for _, l := range locks {
		for _, seen := range set {
			if seen == l {
				continue outer
			}
		}
		set = append(set, l)
	}
	return set
}

// Hold is a set of locks acquired together.
type Hold struct {
	once  sync.Once
	locks []TryLocker
}

// Release unlocks every lock of the hold. Only the first call has an effect,
// so an explicit Release may be combined with a deferred one.
func (h *Hold) Release() {
	h.once.Do(func() {
		for i := len(h.locks) - 1; i >= 0; i-- {
			h.locks[i].Unlock()
		}
	})
}

// Len returns the number of distinct locks in the hold.
func (h *Hold) Len() int {
	return len(h.locks)
}
