// Package metrics exposes Prometheus collectors for task store activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tasktango"

type Metrics struct {
	TasksAdded          prometheus.Counter
	TasksToggled        *prometheus.CounterVec
	TasksDeleted        prometheus.Counter
	TasksCleared        prometheus.Counter
	BonusPointsAwarded  prometheus.Counter
	PersistenceFailures *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TasksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_added_total",
			Help:      "Number of tasks added.",
		}),
		TasksToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_toggled_total",
			Help:      "Number of completion toggles by direction.",
		}, []string{"direction"}),
		TasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_deleted_total",
			Help:      "Number of tasks deleted one at a time.",
		}),
		TasksCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_cleared_total",
			Help:      "Number of completed tasks removed by clear-completed.",
		}),
		BonusPointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bonus_points_awarded_total",
			Help:      "On-time bonus points awarded.",
		}),
		PersistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed loads and saves of the task collection.",
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.TasksAdded,
			m.TasksToggled,
			m.TasksDeleted,
			m.TasksCleared,
			m.BonusPointsAwarded,
			m.PersistenceFailures,
		)
	}

	return m
}

// Noop returns collectors that are not registered anywhere.
func Noop() *Metrics {
	return New(nil)
}
