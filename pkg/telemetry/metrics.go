package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ─── API ─────────────────────────────────────────────────────────────────────

	APITaskChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionai",
		Subsystem: "api",
		Name:      "task_changes_total",
		Help:      "Total task-set mutations accepted by the API, labelled by kind.",
	}, []string{"kind"})

	APIRebuildRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motionai",
		Subsystem: "api",
		Name:      "rebuild_rate_limited_total",
		Help:      "Total manual rebuild requests rejected by the rate limiter.",
	})

	// ─── Rebuilder ───────────────────────────────────────────────────────────────

	ReplansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionai",
		Subsystem: "rebuilder",
		Name:      "replans_total",
		Help:      "Total replan runs, labelled by outcome (ok | validation | unschedulable | error).",
	}, []string{"outcome"})

	ReplanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "motionai",
		Subsystem: "rebuilder",
		Name:      "replan_duration_seconds",
		Help:      "End-to-end replan time (load, plan, persist, cache, publish).",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})

	ScheduleTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "motionai",
		Subsystem: "rebuilder",
		Name:      "schedule_tasks",
		Help:      "Tasks placed on the most recent schedule.",
	})

	ScheduleDays = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "motionai",
		Subsystem: "rebuilder",
		Name:      "schedule_days",
		Help:      "Calendar days spanned by the most recent schedule.",
	})
)
