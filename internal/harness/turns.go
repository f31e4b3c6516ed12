package harness

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"gitlab.com/rogovks/syncprim/turn"
)

type TurnsReport struct {
	Sequence string
	A        int
	B        int
}

// Head returns at most n first entries of the sequence.
func (t TurnsReport) Head(n int) string {
	if len(t.Sequence) <= n {
		return t.Sequence
	}
	return t.Sequence[:n] + "..."
}

// Turns prints "A" and "B" from two goroutines in strict alternation,
// TurnActions letters in total, A first.
func (r *Runner) Turns(ctx context.Context) (TurnsReport, error) {
	// стороны ждут друг друга, прерывать одну из них на полпути нельзя
	if err := ctx.Err(); err != nil {
		return TurnsReport{}, err
	}

	rv := turn.New(turn.A, turn.WithMetrics(r.metrics))
	var out strings.Builder

	total := r.cfg.TurnActions
	actsA := (total + 1) / 2
	actsB := total / 2

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < actsA; i++ {
			rv.ActAsA(func() { out.WriteString("A") })
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < actsB; i++ {
			rv.ActAsB(func() { out.WriteString("B") })
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return TurnsReport{}, err
	}

	rep := TurnsReport{Sequence: out.String()}
	for i, c := range rep.Sequence {
		if c == 'A' {
			rep.A++
		} else {
			rep.B++
		}
		if i > 0 && rep.Sequence[i-1] == byte(c) {
			return rep, fmt.Errorf("%c acted twice in a row at %d", c, i)
		}
	}
	if len(rep.Sequence) != total {
		return rep, fmt.Errorf("got %d actions, want %d", len(rep.Sequence), total)
	}
	return rep, nil
}
