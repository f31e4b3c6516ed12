package rwmutex

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotLocked is the panic value of Unlock on a mutex not locked for writing.
	ErrNotLocked = errors.New("rwmutex: unlock of unlocked mutex")
	// ErrNotRLocked is the panic value of RUnlock on a mutex not locked for reading.
	ErrNotRLocked = errors.New("rwmutex: runlock of unlocked mutex")
)

// A RWMutex is a reader/writer mutual exclusion lock.
// The lock can be held by an arbitrary number of readers or a single writer.
// The zero value for a RWMutex is an unlocked mutex.
//
// Readers are preferred: while at least one reader holds the lock new
// readers are admitted without waiting, so a steady stream of readers can
// starve a writer. Nothing orders waiting readers against waiting writers.
//
// A RWMutex must not be copied after first use.
type RWMutex struct {
	once sync.Once

	// токен писателя: его забирает либо писатель, либо первый читатель
	w chan struct{}
	// токен, защищающий readers
	r chan struct{}

	readers int
	writer  atomic.Bool
}

// New creates *RWMutex.
func New() *RWMutex {
	rw := &RWMutex{}
	rw.init()
	return rw
}

func (rw *RWMutex) init() {
	rw.once.Do(func() {
		rw.w = make(chan struct{}, 1)
		rw.r = make(chan struct{}, 1)
		rw.w <- struct{}{}
		rw.r <- struct{}{}
	})
}

// RLock locks rw for reading.
// It blocks only while a writer holds the lock.
func (rw *RWMutex) RLock() {
	rw.init()
	<-rw.r
	// первый читатель забирает токен писателя за всех остальных
	if rw.readers == 0 {
		<-rw.w
	}
	rw.readers++
	rw.r <- struct{}{}
}

// TryRLock tries to lock rw for reading and reports whether it succeeded.
func (rw *RWMutex) TryRLock() bool {
	rw.init()
	select {
	case <-rw.r:
	default:
		return false
	}
	defer func() { rw.r <- struct{}{} }()

	if rw.readers == 0 {
		select {
		case <-rw.w:
		default:
			return false
		}
	}
	rw.readers++
	return true
}

// RUnlock undoes a single RLock call;
// it does not affect other simultaneous readers.
// It panics with ErrNotRLocked if rw is not locked for reading
// on entry to RUnlock.
func (rw *RWMutex) RUnlock() {
	rw.init()
	<-rw.r
	if rw.readers == 0 {
		rw.r <- struct{}{}
		panic(ErrNotRLocked)
	}
	rw.readers--
	if rw.readers == 0 {
		rw.w <- struct{}{}
	}
	rw.r <- struct{}{}
}

// Lock locks rw for writing.
// If the lock is already locked for reading or writing,
// Lock blocks until the lock is available.
func (rw *RWMutex) Lock() {
	rw.init()
	<-rw.w
	rw.writer.Store(true)
}

// TryLock tries to lock rw for writing and reports whether it succeeded.
func (rw *RWMutex) TryLock() bool {
	rw.init()
	select {
	case <-rw.w:
		rw.writer.Store(true)
		return true
	default:
		return false
	}
}

// Unlock unlocks rw for writing. It panics with ErrNotLocked if rw is
// not locked for writing on entry to Unlock.
//
// As with Mutexes, a locked RWMutex is not associated with a particular
// goroutine. One goroutine may RLock (Lock) a RWMutex and then
// arrange for another goroutine to RUnlock (Unlock) it.
func (rw *RWMutex) Unlock() {
	rw.init()
	if !rw.writer.CompareAndSwap(true, false) {
		panic(ErrNotLocked)
	}
	rw.w <- struct{}{}
}

// RLocker returns a sync.Locker that calls RLock and RUnlock on rw.
func (rw *RWMutex) RLocker() sync.Locker {
	return (*rlocker)(rw)
}

type rlocker RWMutex

func (r *rlocker) Lock()   { (*RWMutex)(r).RLock() }
func (r *rlocker) Unlock() { (*RWMutex)(r).RUnlock() }
