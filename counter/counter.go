package counter

import (
	"golang.org/x/exp/constraints"

	"gitlab.com/rogovks/syncprim/rwmutex"
)

// Counter is a counter that many goroutines may read at the same time
// while writers get exclusive access.
// The zero value is a counter at 0.
type Counter[T constraints.Integer] struct {
	mu    rwmutex.RWMutex
	value T
}

// Get returns the current value under a shared hold.
func (c *Counter[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Increment adds one and returns the new value.
func (c *Counter[T]) Increment() T {
	return c.Add(1)
}

// Add adds delta and returns the new value.
func (c *Counter[T]) Add(delta T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	return c.value
}

// Reset sets the counter back to 0.
func (c *Counter[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = 0
}
