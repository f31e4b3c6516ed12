//go:build !deadlock

// Package xsync selects the mutex used for internal bookkeeping.
// Build with -tags deadlock to swap in github.com/sasha-s/go-deadlock,
// which reports lock-order inversions and long waits at run time:
//
//	go test -tags deadlock ./internal/xsync/... ./cond/... ./queue/... ./turn/... ./once/...
package xsync

import "sync"

// A Mutex is a mutual exclusion lock.
type Mutex = sync.Mutex
