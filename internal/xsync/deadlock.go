//go:build deadlock

package xsync

import (
	deadlock "github.com/sasha-s/go-deadlock"
)

// A Mutex is a mutual exclusion lock with deadlock detection.
type Mutex = deadlock.Mutex
