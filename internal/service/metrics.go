package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PlannerMetrics counts planner activity.
type PlannerMetrics struct {
	runs        *prometheus.CounterVec
	inserted    *prometheus.CounterVec
	roomsFailed prometheus.Counter
}

var _ prometheus.Collector = (*PlannerMetrics)(nil)

func NewPlannerMetrics(namespace string) *PlannerMetrics {
	return &PlannerMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "planner", "runs_total"),
			Help: "Number of planner runs",
		}, []string{"mode"}),
		inserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "planner", "events_inserted_total"),
			Help: "Number of schedule events inserted",
		}, []string{"type"}),
		roomsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "planner", "room_failures_total"),
			Help: "Number of rooms that could not be planned",
		}),
	}
}

func (m *PlannerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.runs.Describe(ch)
	m.inserted.Describe(ch)
	m.roomsFailed.Describe(ch)
}

func (m *PlannerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.runs.Collect(ch)
	m.inserted.Collect(ch)
	m.roomsFailed.Collect(ch)
}

func (m *PlannerMetrics) run(inv Invocation) {
	if m == nil {
		return
	}
	mode := "owner"
	if IsCron(inv) {
		mode = "sweep"
	}
	m.runs.WithLabelValues(mode).Inc()
}

func (m *PlannerMetrics) eventInserted(typ string) {
	if m != nil {
		m.inserted.WithLabelValues(typ).Inc()
	}
}

func (m *PlannerMetrics) roomFailed() {
	if m != nil {
		m.roomsFailed.Inc()
	}
}
