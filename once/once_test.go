package once_test

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/rogovks/syncprim/metrics"
	"gitlab.com/rogovks/syncprim/once"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errBoom = errors.New("boom")

func TestFlag_ExactlyOnce(t *testing.T) {
	const workers = 100

	f := once.New()
	var (
		calls int32
		wg    sync.WaitGroup
		start = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := f.Do(func() error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), calls)
	require.True(t, f.Done())
}

func TestFlag_ErrorRevertsToUnstarted(t *testing.T) {
	f := once.New()

	err := f.Do(func() error { return errBoom })
	require.ErrorIs(t, err, errBoom)
	require.False(t, f.Done())

	calls := 0
	require.NoError(t, f.Do(func() error {
		calls++
		return nil
	}))
	require.NoError(t, f.Do(func() error {
		calls++
		return nil
	}))
	require.Equal(t, 1, calls)
	require.True(t, f.Done())
}

func TestFlag_PanicRevertsToUnstarted(t *testing.T) {
	f := once.New()

	require.PanicsWithValue(t, "init exploded", func() {
		_ = f.Do(func() error { panic("init exploded") })
	})
	require.False(t, f.Done())

	require.NoError(t, f.Do(func() error { return nil }))
	require.True(t, f.Done())
}

func TestFlag_WaitersRetryAfterFailure(t *testing.T) {
	const waiters = 20

	f := once.New()
	running := make(chan struct{})
	fail := make(chan struct{})

	controllerErr := make(chan error, 1)
	go func() {
		controllerErr <- f.Do(func() error {
			close(running)
			<-fail
			return errBoom
		})
	}()
	<-running

	var (
		successes int32
		wg        sync.WaitGroup
	)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.Do(func() error {
				atomic.AddInt32(&successes, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}

	// все ждущие должны стоять в Do до того, как контролёр упадёт
	require.Eventually(t, func() bool {
		return f.Waiting() == waiters
	}, 5*time.Second, time.Millisecond)

	close(fail)
	require.ErrorIs(t, <-controllerErr, errBoom)
	wg.Wait()

	require.Equal(t, int32(1), successes)
	require.True(t, f.Done())
}

func TestFlag_ZeroValue(t *testing.T) {
	var f once.Flag

	require.ErrorIs(t, f.Do(func() error { return errBoom }), errBoom)
	require.False(t, f.Done())
	require.NoError(t, f.Do(func() error { return nil }))
	require.True(t, f.Done())
}

func TestFlag_NilLogger(t *testing.T) {
	f := once.New(once.WithLogger(nil))

	require.ErrorIs(t, f.Do(func() error { return errBoom }), errBoom)
	require.NoError(t, f.Do(func() error { return nil }))
}

func TestValue_ZeroValue(t *testing.T) {
	var v once.Value[string]

	got, err := v.Get(func() (string, error) { return "ready", nil })
	require.NoError(t, err)
	require.Equal(t, "ready", got)
	require.True(t, v.Loaded())
}

func TestFlag_ObservesResults(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := prometheus.NewRegistry()
	f := once.New(
		once.WithLogger(zap.New(core)),
		once.WithMetrics(metrics.New(reg)),
	)

	require.Error(t, f.Do(func() error { return errBoom }))
	require.NoError(t, f.Do(func() error { return nil }))

	require.Equal(t, 1, logs.FilterMessage("initializer failed, flag reset").Len())

	const expected = `
# HELP syncprim_once_runs_total Initializer runs by result.
# TYPE syncprim_once_runs_total counter
syncprim_once_runs_total{result="error"} 1
syncprim_once_runs_total{result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "syncprim_once_runs_total"))
}

type resource struct {
	answer int
}

func TestValue_SharedAcrossCallers(t *testing.T) {
	const workers = 100

	v := once.NewValue[*resource]()
	var (
		builds int32
		wg     sync.WaitGroup
		seen   = make([]*resource, workers)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := v.Get(func() (*resource, error) {
				atomic.AddInt32(&builds, 1)
				return &resource{answer: 42}, nil
			})
			assert.NoError(t, err)
			seen[i] = r
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), builds)
	require.True(t, v.Loaded())
	for _, r := range seen {
		require.Same(t, seen[0], r)
		require.Equal(t, 42, r.answer)
	}
}

func TestValue_FailedInitLeavesZero(t *testing.T) {
	v := once.NewValue[int]()

	got, err := v.Get(func() (int, error) { return 7, errBoom })
	require.ErrorIs(t, err, errBoom)
	require.Zero(t, got)
	require.False(t, v.Loaded())

	got, err = v.Get(func() (int, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, 42, got)

	got, err = v.Get(func() (int, error) { return 0, errBoom })
	require.NoError(t, err)
	require.Equal(t, 42, got)
}
