package harness

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"gitlab.com/rogovks/syncprim/once"
)

// expensiveResource stands in for data that is costly to build, such as a
// table loaded from disk, and is shared after the first build.
type expensiveResource struct {
	value int
}

type OnceReport struct {
	Callers int
	Inits   int
	Value   int
}

// Once has OnceWorkers goroutines read a lazily built resource at the same
// time. The builder must run exactly once and every caller must see the
// same instance.
func (r *Runner) Once(ctx context.Context) (OnceReport, error) {
	res := once.NewValue[*expensiveResource](
		once.WithLogger(r.log.Named("once")),
		once.WithMetrics(r.metrics),
	)

	var inits atomic.Int32
	build := func() (*expensiveResource, error) {
		inits.Add(1)
		return &expensiveResource{value: 42}, nil
	}

	seen := make([]*expensiveResource, r.cfg.OnceWorkers)
	g, ctx := errgroup.WithContext(ctx)
	for i := range seen {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := res.Get(build)
			if err != nil {
				return err
			}
			seen[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OnceReport{}, err
	}

	rep := OnceReport{Callers: len(seen), Inits: int(inits.Load()), Value: seen[0].value}
	if rep.Inits != 1 {
		return rep, fmt.Errorf("resource built %d times", rep.Inits)
	}
	for i, v := range seen {
		if v != seen[0] {
			return rep, fmt.Errorf("caller %d saw a different instance", i)
		}
	}
	return rep, nil
}
