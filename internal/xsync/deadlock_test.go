//go:build deadlock

package xsync

import (
	"testing"

	deadlock "github.com/sasha-s/go-deadlock"
	"github.com/stretchr/testify/require"
)

func TestMutex_IsDeadlockMutex(t *testing.T) {
	require.IsType(t, &deadlock.Mutex{}, new(Mutex))
}
