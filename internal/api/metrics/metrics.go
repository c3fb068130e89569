// Package metrics defines and registers all custom Prometheus metrics for the
// DreamScape identity service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "validation_error", "conflict", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionValidationsTotal counts session validation outcomes.
// Label:
//   - result: "valid", "not_found", "expired", or "error"
var SessionValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_validations_total",
		Help:      "Total number of session validations, by result.",
	},
	[]string{"result"},
)

// SessionsPrunedTotal counts expired sessions removed lazily at validation time.
var SessionsPrunedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_pruned_total",
		Help:      "Total number of expired sessions pruned during validation.",
	},
)

// ── Activity pipeline metrics ─────────────────────────────────────────────────

// ActivityEventsTotal counts activity events that completed processing.
// Label:
//   - kind: the statistic counter touched (e.g. "stories_created")
var ActivityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_events_total",
		Help:      "Total number of activity events successfully applied.",
	},
	[]string{"kind"},
)

// ActivityErrorsTotal counts activity events that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "process_failed")
var ActivityErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_errors_total",
		Help:      "Total number of activity events that failed processing.",
	},
	[]string{"reason"},
)

// ActivityQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityProcessingDuration measures how long a single activity event takes to apply.
// Label:
//   - kind: the statistic counter touched
var ActivityProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_processing_duration_seconds",
		Help:      "Duration of activity event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"kind"},
)
