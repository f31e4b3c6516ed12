// Package cond implements a predicate-gated condition variable.
//
// Unlike sync.Cond, Wait takes the predicate itself and owns the recheck
// loop, so callers cannot forget it.
package cond

import (
	"errors"
	"sync"

	"gitlab.com/rogovks/syncprim/internal/xsync"
)

// ErrNotLocked is the panic value of Wait when the bound lock is not held.
var ErrNotLocked = errors.New("cond: wait without holding the lock")

// Locker is a lock that can report whether it is held.
// *mutex.Mutex implements it.
type Locker interface {
	sync.Locker
	Locked() bool
}

// Cond is a rendezvous point for goroutines waiting for a predicate over
// state guarded by L.
type Cond struct {
	L Locker

	mu      xsync.Mutex
	waiters []chan struct{}
}

// New returns a new Cond bound to l.
func New(l Locker) *Cond {
	return &Cond{L: l}
}

// Wait blocks until pred returns true. The caller must hold c.L.
//
// pred is always evaluated with c.L held. While pred is false Wait releases
// c.L, suspends, and reacquires c.L after a wakeup before checking pred again.
// When Wait returns pred was true and c.L is still held.
func (c *Cond) Wait(pred func() bool) {
	for {
		if !c.L.Locked() {
			panic(ErrNotLocked)
		}
		if pred() {
			return
		}
		c.park()
	}
}

func (c *Cond) park() {
	ready := make(chan struct{})

	// регистрируемся до того, как отпустить L: уведомление, отправленное
	// после изменения состояния под L, нас уже не пропустит
	c.mu.Lock()
	c.waiters = append(c.waiters, ready)
	c.mu.Unlock()

	c.L.Unlock()
	<-ready
	c.L.Lock()
}

// Signal wakes one goroutine waiting on c, if there is any.
// The woken goroutine rechecks its own predicate; a Signal does not imply
// that any particular predicate became true.
//
// It is allowed but not required for the caller to hold c.L.
func (c *Cond) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.waiters) == 0 {
		return
	}
	close(c.waiters[0])
	c.waiters[0] = nil
	c.waiters = c.waiters[1:]
}

// Broadcast wakes all goroutines waiting on c.
//
// It is allowed but not required for the caller to hold c.L.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ready := range c.waiters {
		close(ready)
	}
	c.waiters = nil
}

// Waiting returns the number of goroutines currently suspended in Wait.
func (c *Cond) Waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
