package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymsched_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymsched_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TimeslotJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymsched_timeslot_joins_total",
			Help: "Total number of timeslot join attempts",
		},
		[]string{"outcome"},
	)

	TimeslotLeavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymsched_timeslot_leaves_total",
			Help: "Total number of timeslot leaves",
		},
	)

	ScheduleResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymsched_schedule_resets_total",
			Help: "Total number of schedule resets",
		},
		[]string{"outcome"},
	)

	ActiveSchedulesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymsched_active_schedules_created_total",
			Help: "Total number of active schedules created from templates",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// Join outcomes: joined, already_joined, full, not_found.
func RecordJoin(outcome string) {
	TimeslotJoinsTotal.WithLabelValues(outcome).Inc()
}

func RecordLeave() {
	TimeslotLeavesTotal.Inc()
}

// Reset outcomes: ok, failed.
func RecordReset(outcome string) {
	ScheduleResetsTotal.WithLabelValues(outcome).Inc()
}

func RecordScheduleCreated() {
	ActiveSchedulesCreatedTotal.Inc()
}
