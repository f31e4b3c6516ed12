package harness

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"gitlab.com/rogovks/syncprim/queue"
)

type QueueReport struct {
	Pushed []int
	Popped []int
}

// Queue runs one producer pushing QueueItems, QueueItems-1, ..., 1 and one
// consumer popping until it sees 1. The pop sequence must equal the push
// sequence.
func (r *Runner) Queue(ctx context.Context) (QueueReport, error) {
	// производитель и потребитель не отменяются посреди обмена:
	// Pop не умеет прерываться, поэтому контекст проверяем только на входе
	if err := ctx.Err(); err != nil {
		return QueueReport{}, err
	}

	q := queue.New[int](queue.WithMetrics(r.metrics))
	rep := QueueReport{}
	for v := r.cfg.QueueItems; v >= 1; v-- {
		rep.Pushed = append(rep.Pushed, v)
	}

	var g errgroup.Group
	g.Go(func() error {
		for _, v := range rep.Pushed {
			q.Push(v)
		}
		return nil
	})
	g.Go(func() error {
		for {
			v := q.Pop()
			rep.Popped = append(rep.Popped, v)
			if v == 1 {
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil {
		return rep, err
	}

	if !slices.Equal(rep.Pushed, rep.Popped) {
		return rep, fmt.Errorf("popped %v, pushed %v", rep.Popped, rep.Pushed)
	}
	return rep, nil
}
