package mutex_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gitlab.com/rogovks/syncprim/mutex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMutex_ZeroValue(t *testing.T) {
	var mu mutex.Mutex

	require.False(t, mu.Locked())
	mu.Lock()
	require.True(t, mu.Locked())
	mu.Unlock()
	require.False(t, mu.Locked())
}

func TestMutex_TryLock(t *testing.T) {
	mu := mutex.New()

	require.True(t, mu.TryLock())
	require.False(t, mu.TryLock())
	mu.Unlock()
	require.True(t, mu.TryLock())
	mu.Unlock()
}

func TestMutex_UnlockOfUnlocked(t *testing.T) {
	mu := mutex.New()

	require.PanicsWithError(t, mutex.ErrNotLocked.Error(), mu.Unlock)

	mu.Lock()
	mu.Unlock()
	require.PanicsWithError(t, mutex.ErrNotLocked.Error(), mu.Unlock)
}

func TestMutex_BlocksUntilUnlock(t *testing.T) {
	mu := mutex.New()
	mu.Lock()

	acquired := make(chan struct{})
	go func() {
		mu.Lock()
		close(acquired)
		mu.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock returned while the mutex was held")
	case <-time.After(50 * time.Millisecond):
	}

	mu.Unlock()

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("second Lock did not return after Unlock")
	}
}

func TestMutex_MutualExclusion(t *testing.T) {
	const (
		workers    = 16
		iterations = 2000
	)

	var (
		mu      mutex.Mutex
		holders int32
		counter int
		wg      sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				mu.Lock()
				if atomic.AddInt32(&holders, 1) != 1 {
					t.Error("two goroutines hold the mutex at once")
				}
				counter++
				atomic.AddInt32(&holders, -1)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, workers*iterations, counter)
}

func TestMutex_UnlockFromAnotherGoroutine(t *testing.T) {
	mu := mutex.New()
	mu.Lock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		mu.Unlock()
	}()
	<-done

	require.False(t, mu.Locked())
}
