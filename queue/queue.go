// Package queue implements an unbounded FIFO hand-off between goroutines.
package queue

import (
	"sync"

	"gitlab.com/rogovks/syncprim/cond"
	"gitlab.com/rogovks/syncprim/metrics"
	"gitlab.com/rogovks/syncprim/mutex"
)

type options struct {
	metrics *metrics.Metrics
}

type Option func(*options)

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Queue is an unbounded blocking FIFO queue. Items come out in the order
// their Push calls acquired the queue lock.
//
// The zero value is an empty queue ready to use.
// A Queue must not be copied after first use.
type Queue[T any] struct {
	opts options

	once     sync.Once
	mu       mutex.Mutex
	nonEmpty *cond.Cond
	items    []T
}

func New[T any](opts ...Option) *Queue[T] {
	q := &Queue[T]{}
	for _, opt := range opts {
		opt(&q.opts)
	}
	return q
}

func (q *Queue[T]) init() {
	q.once.Do(func() {
		q.nonEmpty = cond.New(&q.mu)
	})
}

// Push appends item to the tail and wakes one waiting Pop.
func (q *Queue[T]) Push(item T) {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	q.opts.metrics.QueuePushed()
	q.nonEmpty.Signal()
}

// Pop removes and returns the head, blocking while the queue is empty.
func (q *Queue[T]) Pop() T {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()

	blocked := len(q.items) == 0
	q.nonEmpty.Wait(func() bool { return len(q.items) > 0 })
	q.opts.metrics.QueuePopped(blocked)
	return q.take()
}

// TryPop removes and returns the head if there is one.
func (q *Queue[T]) TryPop() (T, bool) {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	q.opts.metrics.QueuePopped(false)
	return q.take(), true
}

func (q *Queue[T]) take() T {
	item := q.items[0]
	// обнуляем слот, чтобы не держать ссылку на отданный элемент
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
