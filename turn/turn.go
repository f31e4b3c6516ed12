// Package turn makes two parties take strictly alternating turns.
package turn

import (
	"fmt"
	"sync"

	"gitlab.com/rogovks/syncprim/cond"
	"gitlab.com/rogovks/syncprim/metrics"
	"gitlab.com/rogovks/syncprim/mutex"
)

// Party is the token that names whose turn it is.
type Party int

const (
	A Party = iota
	B
)

func (p Party) String() string {
	switch p {
	case A:
		return "A"
	case B:
		return "B"
	default:
		return fmt.Sprintf("Party(%d)", int(p))
	}
}

// Other returns the opposite party.
func (p Party) Other() Party {
	if p == A {
		return B
	}
	return A
}

func (p Party) valid() bool {
	return p == A || p == B
}

type options struct {
	metrics *metrics.Metrics
}

type Option func(*options)

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Rendezvous hands the turn back and forth between A and B. Any number of
// goroutines may act for either party; actions never run twice in a row for
// the same party.
//
// The zero value is ready to use and A moves first.
// A Rendezvous must not be copied after first use.
type Rendezvous struct {
	opts options

	once sync.Once
	mu   mutex.Mutex
	c    *cond.Cond
	turn Party
}

// New creates a Rendezvous where first moves first.
func New(first Party, opts ...Option) *Rendezvous {
	if !first.valid() {
		panic(fmt.Sprintf("turn: invalid party %d", int(first)))
	}

	r := &Rendezvous{turn: first}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

func (r *Rendezvous) init() {
	r.once.Do(func() {
		r.c = cond.New(&r.mu)
	})
}

// Act blocks until it is p's turn, runs action and passes the turn on.
// action runs with the rendezvous lock held and must not call Act.
// If action panics the turn is not passed.
func (r *Rendezvous) Act(p Party, action func()) {
	if !p.valid() {
		panic(fmt.Sprintf("turn: invalid party %d", int(p)))
	}

	r.init()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.c.Wait(func() bool { return r.turn == p })
	action()
	r.opts.metrics.TurnAction(p.String())
	r.turn = p.Other()
	// будим всех: спать могут и A, и B, а проснуться должен только тот, чей ход
	r.c.Broadcast()
}

// ActAsA is Act(A, action).
func (r *Rendezvous) ActAsA(action func()) {
	r.Act(A, action)
}

// ActAsB is Act(B, action).
func (r *Rendezvous) ActAsB(action func()) {
	r.Act(B, action)
}

// Turn returns the party that moves next.
func (r *Rendezvous) Turn() Party {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn
}
