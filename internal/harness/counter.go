package harness

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"gitlab.com/rogovks/syncprim/counter"
)

type CounterReport struct {
	Final int
	Reads int
}

// Counter has CounterWriters goroutines increment a shared counter while
// CounterReaders goroutines read it. Readers must only ever see a
// non-decreasing sequence and the final value must be writers*increments.
//
// The counter admits new readers while others hold it, so readers spinning
// on Get could keep the writers out forever. Each reader yields between
// reads and stops after readerBudget reads at most.
func (r *Runner) Counter(ctx context.Context) (CounterReport, error) {
	var (
		c       counter.Counter[int]
		reads   atomic.Int64
		writing atomic.Int32
	)
	want := r.cfg.CounterWriters * r.cfg.CounterIncrements
	readerBudget := want
	writing.Store(int32(r.cfg.CounterWriters))

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < r.cfg.CounterWriters; w++ {
		g.Go(func() error {
			defer writing.Add(-1)
			for i := 0; i < r.cfg.CounterIncrements; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				c.Increment()
			}
			return nil
		})
	}
	for rd := 0; rd < r.cfg.CounterReaders; rd++ {
		g.Go(func() error {
			last := 0
			for n := 0; n < readerBudget && writing.Load() > 0; n++ {
				v := c.Get()
				reads.Add(1)
				if v < last || v > want {
					return fmt.Errorf("reader saw %d after %d", v, last)
				}
				last = v
				runtime.Gosched()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CounterReport{}, err
	}

	rep := CounterReport{Final: c.Get(), Reads: int(reads.Load())}
	if rep.Final != want {
		return rep, fmt.Errorf("final value %d, want %d", rep.Final, want)
	}
	return rep, nil
}
