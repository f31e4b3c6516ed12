package xsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutex(t *testing.T) {
	var (
		mu    Mutex
		wg    sync.WaitGroup
		total int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mu.Lock()
				total++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 800, total)
}
