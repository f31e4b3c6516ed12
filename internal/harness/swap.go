package harness

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gitlab.com/rogovks/syncprim/multilock"
	"gitlab.com/rogovks/syncprim/mutex"
)

// bigObject carries its own lock, so swapping two of them needs both.
type bigObject struct {
	mu    mutex.Mutex
	value int
}

func swapObjects(acq *multilock.Acquirer, lhs, rhs *bigObject) {
	if lhs == rhs {
		return
	}
	h := acq.AcquireAll(&lhs.mu, &rhs.mu)
	defer h.Release()

	lhs.value, rhs.value = rhs.value, lhs.value
}

type SwapReport struct {
	Swaps int
	X1    int
	X2    int
}

// Swap has two workers swap the same pair of objects, each naming the
// locks in the opposite order. Every swap goes through the acquirer, so
// the run always terminates; an even number of swaps restores the values.
func (r *Runner) Swap(ctx context.Context) (SwapReport, error) {
	acq := r.acquirer()
	x1 := &bigObject{value: 1}
	x2 := &bigObject{value: 2}

	n := r.cfg.SwapIterations
	g, ctx := errgroup.WithContext(ctx)
	worker := func(lhs, rhs *bigObject) func() error {
		return func() error {
			for i := 0; i < n; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				swapObjects(acq, lhs, rhs)
			}
			return nil
		}
	}
	g.Go(worker(x1, x2))
	g.Go(worker(x2, x1))

	if err := g.Wait(); err != nil {
		return SwapReport{}, err
	}

	rep := SwapReport{Swaps: 2 * n, X1: x1.value, X2: x2.value}
	if rep.X1 != 1 || rep.X2 != 2 {
		return rep, fmt.Errorf("after %d swaps got x1=%d x2=%d, want 1 and 2", rep.Swaps, rep.X1, rep.X2)
	}
	return rep, nil
}
