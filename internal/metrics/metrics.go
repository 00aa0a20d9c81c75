package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session lifecycle metrics
var (
	// SessionsStarted counts sessions opened through the manager
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_sessions_started_total",
			Help: "Total work sessions started",
		},
	)

	// SessionsStopped counts sessions closed by their owner
	SessionsStopped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_sessions_stopped_total",
			Help: "Total work sessions stopped by the user",
		},
	)

	// SessionRejections counts start/stop requests rejected by lifecycle rules
	SessionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_session_rejections_total",
			Help: "Start or stop requests rejected, by reason",
		},
		[]string{"reason"},
	)
)

// Reclamation metrics
var (
	// SessionsReclaimed counts overdue sessions force-closed by the sweep
	SessionsReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_sessions_reclaimed_total",
			Help: "Total overdue work sessions closed by the sweep",
		},
	)

	// SweepDuration tracks how long a single sweep takes
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worklog_sweep_duration_seconds",
			Help:    "Overdue sweep duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// SweepErrors counts sweeps that finished with at least one store error
	SweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_sweep_errors_total",
			Help: "Total sweeps that hit a store error",
		},
	)
)

// Notification metrics
var (
	// NotificationsDelivered counts reclaim notices handed to a deliverer
	NotificationsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_notifications_delivered_total",
			Help: "Total reclaim notifications delivered",
		},
	)

	// NotificationsFailed counts notices that could not be delivered
	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_notifications_failed_total",
			Help: "Total reclaim notifications not delivered, by reason",
		},
		[]string{"reason"},
	)
)
