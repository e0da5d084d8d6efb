// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the HR portal.
var (
	// Request lifecycle counters.
	RequestsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_requests_submitted_total",
			Help: "Total number of leave and overtime requests submitted",
		},
		[]string{"kind"},
	)

	RequestsRejectedInputTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_requests_invalid_total",
			Help: "Total number of submissions refused for invalid input",
		},
		[]string{"kind", "reason"},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_decisions_total",
			Help: "Total number of decisions recorded on requests",
		},
		[]string{"kind", "status", "role"},
	)

	DecisionsDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_decisions_denied_total",
			Help: "Total number of decision attempts refused",
		},
		[]string{"kind", "reason"},
	)

	// Histograms.
	LeaveDaysRequested = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hr_leave_days_requested",
			Help:    "Number of days per submitted leave request",
			Buckets: []float64{1, 2, 3, 5, 10, 15, 20, 30},
		},
	)

	OvertimeHoursRequested = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hr_overtime_hours_requested",
			Help:    "Number of hours per submitted overtime request",
			Buckets: prometheus.LinearBuckets(1, 1, 12), // 1h to 12h
		},
	)

	// Gauges.
	PendingRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hr_pending_requests",
			Help: "Number of requests awaiting a decision at last scheduler run",
		},
		[]string{"kind"},
	)

	// Dashboard cache.
	DashboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_dashboard_cache_total",
			Help: "Dashboard stats cache lookups",
		},
		[]string{"result"},
	)

	// Authentication.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_login_attempts_total",
			Help: "Total login attempts",
		},
		[]string{"status"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"status"},
	)

	SchedulerNotificationsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_sent_total",
			Help: "Total successful reminder notifications sent",
		},
	)

	SchedulerNotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_failed_total",
			Help: "Total failed notification attempts",
		},
		[]string{"reason"},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute scheduler reminder job",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~13s
		},
	)

	// HTTP.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordRequestSubmitted increments the submission counter for a request kind.
func RecordRequestSubmitted(kind string) {
	RequestsSubmittedTotal.WithLabelValues(kind).Inc()
}

// RecordInvalidRequest increments the invalid-input counter.
func RecordInvalidRequest(kind, reason string) {
	RequestsRejectedInputTotal.WithLabelValues(kind, reason).Inc()
}

// RecordDecision increments the decision counter.
func RecordDecision(kind, status, role string) {
	DecisionsTotal.WithLabelValues(kind, status, role).Inc()
}

// RecordDecisionDenied increments the denied-decision counter.
func RecordDecisionDenied(kind, reason string) {
	DecisionsDeniedTotal.WithLabelValues(kind, reason).Inc()
}

// ObserveLeaveDays records the length of a submitted leave request.
func ObserveLeaveDays(days float64) {
	LeaveDaysRequested.Observe(days)
}

// ObserveOvertimeHours records the length of a submitted overtime request.
func ObserveOvertimeHours(hours float64) {
	OvertimeHoursRequested.Observe(hours)
}

// SetPendingRequests sets the pending gauge for a request kind.
func SetPendingRequests(kind string, count int) {
	PendingRequests.WithLabelValues(kind).Set(float64(count))
}

// RecordDashboardCache records a cache "hit", "miss" or "error".
func RecordDashboardCache(result string) {
	DashboardCacheTotal.WithLabelValues(result).Inc()
}

// RecordLogin records a login attempt outcome.
func RecordLogin(status string) {
	LoginAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordSchedulerJobRun increments the scheduler job counter.
func RecordSchedulerJobRun(status string) {
	SchedulerJobsRunTotal.WithLabelValues(status).Inc()
}

// RecordSchedulerNotificationSent increments the sent reminder counter.
func RecordSchedulerNotificationSent() {
	SchedulerNotificationsSentTotal.Inc()
}

// RecordSchedulerNotificationFailed increments the failed notification counter.
func RecordSchedulerNotificationFailed(reason string) {
	SchedulerNotificationsFailedTotal.WithLabelValues(reason).Inc()
}

// SetSchedulerLastRun sets the last run timestamp to now.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}

// ObserveSchedulerJobDuration records the duration of a scheduler run.
func ObserveSchedulerJobDuration(seconds float64) {
	SchedulerJobDurationSeconds.Observe(seconds)
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route, code string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}
