package harness

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"gitlab.com/rogovks/syncprim/mutex"
)

// guardedList is a list whose every access goes through one mutex.
type guardedList struct {
	mu    mutex.Mutex
	items []int
}

func (l *guardedList) Add(v int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, v)
}

func (l *guardedList) Contains(v int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.items, v)
}

func (l *guardedList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

type ListReport struct {
	Size  int
	Found []int
}

// List has ListAdders goroutines append ListAdds values each while
// ListFinders goroutines look values up. No add may be lost.
func (r *Runner) List(ctx context.Context) (ListReport, error) {
	var l guardedList
	total := r.cfg.ListAdders * r.cfg.ListAdds

	found := make([]int, r.cfg.ListFinders)
	g, ctx := errgroup.WithContext(ctx)
	for a := 0; a < r.cfg.ListAdders; a++ {
		g.Go(func() error {
			for j := 0; j < r.cfg.ListAdds; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				l.Add(a*r.cfg.ListAdds + j)
			}
			return nil
		})
	}
	for f := range found {
		g.Go(func() error {
			for v := 0; v < total; v++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if l.Contains(v) {
					found[f]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ListReport{}, err
	}

	rep := ListReport{Size: l.Len(), Found: found}
	if rep.Size != total {
		return rep, fmt.Errorf("list has %d items, want %d", rep.Size, total)
	}
	for v := 0; v < total; v++ {
		if !l.Contains(v) {
			return rep, fmt.Errorf("value %d lost", v)
		}
	}
	return rep, nil
}
