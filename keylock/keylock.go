package keylock

import (
	"gitlab.com/rogovks/syncprim/multilock"
	"gitlab.com/rogovks/syncprim/mutex"
)

// KeyLock locks sets of string keys. Every key has its own mutex, created
// on first use; a set is taken all-or-nothing through a multilock.Acquirer,
// so callers may list overlapping keys in any order.
type KeyLock struct {
	acq   *multilock.Acquirer
	mu    mutex.Mutex
	muMap map[string]*mutex.Mutex
}

// New creates a KeyLock. opts configure the underlying acquirer.
func New(opts ...multilock.Option) *KeyLock {
	return &KeyLock{
		acq:   multilock.New(opts...),
		muMap: make(map[string]*mutex.Mutex),
	}
}

func (l *KeyLock) lockers(keys []string) []multilock.TryLocker {
	l.mu.Lock()
	defer l.mu.Unlock()

	locks := make([]multilock.TryLocker, 0, len(keys))
	for _, key := range keys {
		m, ok := l.muMap[key]
		if !ok {
			m = mutex.New()
			l.muMap[key] = m
		}
		locks = append(locks, m)
	}
	return locks
}

// LockKeys blocks until every key in keys is locked by the caller and
// returns the function that unlocks them. Repeated keys are locked once;
// keys must not be empty. Calling unlock more than once is a no-op.
func (l *KeyLock) LockKeys(keys []string) (unlock func()) {
	h := l.acq.AcquireAll(l.lockers(keys)...)
	return h.Release
}

// Keys returns the number of keys that have ever been locked.
func (l *KeyLock) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.muMap)
}
