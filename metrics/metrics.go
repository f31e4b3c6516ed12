// Package metrics exposes prometheus counters for the primitives.
//
// A nil *Metrics is valid and records nothing, so primitives built without
// metrics pay only a nil check.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "syncprim"

// Result labels of once runs.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultPanic = "panic"
)

type Metrics struct {
	multilockAcquisitions prometheus.Counter
	multilockBackoffs     prometheus.Counter

	queuePushed      prometheus.Counter
	queuePopped      prometheus.Counter
	queueBlockedPops prometheus.Counter

	onceRuns    *prometheus.CounterVec
	turnActions *prometheus.CounterVec
}

// New creates the collectors and registers them in reg.
// It panics if any of them is already registered there.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		multilockAcquisitions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multilock",
			Name:      "acquisitions_total",
			Help:      "Lock sets acquired by AcquireAll.",
		}),
		multilockBackoffs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multilock",
			Name:      "backoffs_total",
			Help:      "Failed all-or-nothing attempts that released their partial hold and backed off.",
		}),
		queuePushed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pushed_total",
			Help:      "Items pushed to blocking queues.",
		}),
		queuePopped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "popped_total",
			Help:      "Items popped from blocking queues.",
		}),
		queueBlockedPops: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "blocked_pops_total",
			Help:      "Pops that found the queue empty and had to wait.",
		}),
		onceRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "once",
			Name:      "runs_total",
			Help:      "Initializer runs by result.",
		}, []string{"result"}),
		turnActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "turn",
			Name:      "actions_total",
			Help:      "Actions performed by each party of a turn rendezvous.",
		}, []string{"party"}),
	}
}

func (m *Metrics) MultilockAcquired() {
	if m == nil {
		return
	}
	m.multilockAcquisitions.Inc()
}

func (m *Metrics) MultilockBackoff() {
	if m == nil {
		return
	}
	m.multilockBackoffs.Inc()
}

func (m *Metrics) QueuePushed() {
	if m == nil {
		return
	}
	m.queuePushed.Inc()
}

// QueuePopped records a pop; blocked tells whether the pop had to wait.
func (m *Metrics) QueuePopped(blocked bool) {
	if m == nil {
		return
	}
	m.queuePopped.Inc()
	if blocked {
		m.queueBlockedPops.Inc()
	}
}

// OnceRun records a finished initializer run with one of the Result* labels.
func (m *Metrics) OnceRun(result string) {
	if m == nil {
		return
	}
	m.onceRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) TurnAction(party string) {
	if m == nil {
		return
	}
	m.turnActions.WithLabelValues(party).Inc()
}
