package mutex

import (
	"errors"
	"sync"
)

// ErrNotLocked is the panic value of Unlock on an unlocked Mutex.
var ErrNotLocked = errors.New("mutex: unlock of unlocked mutex")

// A Mutex is a mutual exclusion lock.
// The zero value for a Mutex is an unlocked mutex.
//
// The lock is a single token kept in a buffered channel: the token is in the
// channel while the mutex is free and is taken out by the holder. Sending the
// token back in Unlock happens before the receive that completes the next
// Lock, so writes made under the lock are visible to the next holder.
//
// As with sync.Mutex, a locked Mutex is not associated with a particular
// goroutine. One goroutine may Lock a Mutex and arrange for another to Unlock it.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	once sync.Once
	ch   chan struct{}
}

// New creates an unlocked *Mutex.
func New() *Mutex {
	m := &Mutex{}
	m.init()
	return m
}

func (m *Mutex) init() {
	m.once.Do(func() {
		m.ch = make(chan struct{}, 1)
		m.ch <- struct{}{}
	})
}

// Lock locks m.
// If the lock is already in use, the calling goroutine
// blocks until the mutex is available.
func (m *Mutex) Lock() {
	m.init()
	<-m.ch
}

// TryLock tries to lock m and reports whether it succeeded.
// It never blocks.
func (m *Mutex) TryLock() bool {
	m.init()
	select {
	case <-m.ch:
		return true
	default:
		return false
	}
}

// Unlock unlocks m and wakes at most one goroutine blocked in Lock.
// It panics with ErrNotLocked if m is not locked on entry to Unlock.
func (m *Mutex) Unlock() {
	m.init()
	select {
	case m.ch <- struct{}{}:
	default:
		// токен уже в канале - мьютекс никто не держит
		panic(ErrNotLocked)
	}
}

// Locked reports whether m is currently held by someone.
// The answer may be stale by the time the caller looks at it unless
// the caller itself is the holder.
func (m *Mutex) Locked() bool {
	m.init()
	return len(m.ch) == 0
}
