package turn_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gitlab.com/rogovks/syncprim/metrics"
	"gitlab.com/rogovks/syncprim/turn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func play(r *turn.Rendezvous, first turn.Party, actions int, goroutinesPerParty int) []turn.Party {
	var (
		seq []turn.Party
		wg  sync.WaitGroup
	)

	share := func(p turn.Party) int {
		n := actions / 2
		if actions%2 == 1 && p == first {
			n++
		}
		return n
	}

	for _, p := range []turn.Party{turn.A, turn.B} {
		total := share(p)
		for g := 0; g < goroutinesPerParty; g++ {
			n := total / goroutinesPerParty
			if g < total%goroutinesPerParty {
				n++
			}
			wg.Add(1)
			go func(p turn.Party, n int) {
				defer wg.Done()
				for i := 0; i < n; i++ {
					r.Act(p, func() { seq = append(seq, p) })
				}
			}(p, n)
		}
	}
	wg.Wait()
	return seq
}

func TestRendezvous_StrictAlternation(t *testing.T) {
	for _, tc := range []struct {
		name       string
		first      turn.Party
		actions    int
		goroutines int
	}{
		{name: "a_first_even", first: turn.A, actions: 1000, goroutines: 1},
		{name: "b_first_even", first: turn.B, actions: 1000, goroutines: 1},
		{name: "a_first_odd", first: turn.A, actions: 999, goroutines: 1},
		{name: "several_goroutines_per_party", first: turn.A, actions: 1000, goroutines: 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := turn.New(tc.first)
			seq := play(r, tc.first, tc.actions, tc.goroutines)

			require.Len(t, seq, tc.actions)
			require.Equal(t, tc.first, seq[0])

			counts := map[turn.Party]int{}
			for i, p := range seq {
				counts[p]++
				if i > 0 && seq[i-1] == p {
					t.Fatalf("party %v acted twice in a row at %d", p, i)
				}
			}
			require.LessOrEqual(t, counts[turn.A]-counts[turn.B], 1)
			require.LessOrEqual(t, counts[turn.B]-counts[turn.A], 1)
		})
	}
}

func TestRendezvous_Sequence(t *testing.T) {
	r := turn.New(turn.B)
	seq := play(r, turn.B, 6, 1)

	want := []turn.Party{turn.B, turn.A, turn.B, turn.A, turn.B, turn.A}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Fatalf("unexpected turn sequence (-want +got):\n%s", diff)
	}
	require.Equal(t, turn.B, r.Turn())
}

func TestRendezvous_ZeroValue(t *testing.T) {
	var r turn.Rendezvous
	require.Equal(t, turn.A, r.Turn())

	seq := play(&r, turn.A, 4, 1)
	require.Equal(t, []turn.Party{turn.A, turn.B, turn.A, turn.B}, seq)
}

func TestRendezvous_ActAs(t *testing.T) {
	r := turn.New(turn.A)
	var out strings.Builder

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			r.ActAsB(func() { out.WriteString("B") })
		}
	}()
	for i := 0; i < 3; i++ {
		r.ActAsA(func() { out.WriteString("A") })
	}
	<-done

	require.Equal(t, "ABABAB", out.String())
}

func TestRendezvous_InvalidParty(t *testing.T) {
	require.Panics(t, func() { turn.New(turn.Party(7)) })

	r := turn.New(turn.A)
	require.Panics(t, func() { r.Act(turn.Party(-1), func() {}) })
}

func TestParty_String(t *testing.T) {
	require.Equal(t, "A", turn.A.String())
	require.Equal(t, "B", turn.B.String())
	require.Equal(t, "Party(5)", turn.Party(5).String())
	require.Equal(t, turn.B, turn.A.Other())
	require.Equal(t, turn.A, turn.B.Other())
}

func TestRendezvous_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := turn.New(turn.A, turn.WithMetrics(metrics.New(reg)))

	play(r, turn.A, 5, 1)

	const expected = `
# HELP syncprim_turn_actions_total Actions performed by each party of a turn rendezvous.
# TYPE syncprim_turn_actions_total counter
syncprim_turn_actions_total{party="A"} 3
syncprim_turn_actions_total{party="B"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "syncprim_turn_actions_total"))
}
