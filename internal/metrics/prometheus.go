package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "randevulu_http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"route", "status", "method"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "randevulu_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route", "method"},
)

var RateLimitRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "randevulu_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter",
	},
	[]string{"scope"},
)

var AppointmentTransitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "randevulu_appointment_transitions_total",
		Help: "Appointment lifecycle operations by action and outcome",
	},
	[]string{"action", "outcome"},
)

var SideEffectFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "randevulu_side_effect_failures_total",
		Help: "Best-effort steps that failed after the primary write committed",
	},
	[]string{"operation"},
)

var AvailabilityFailOpenTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "randevulu_availability_fail_open_total",
		Help: "Availability lookups that returned the full grid after a storage error",
	},
)

var NotificationsCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "randevulu_notifications_created_total",
		Help: "In-app notifications written",
	},
	[]string{"type"},
)

var EventsPublishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "randevulu_events_published_total",
		Help: "Outbox events handed to the configured sink",
	},
	[]string{"sink", "status"},
)

var EventPublishDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "randevulu_event_publish_duration_seconds",
		Help:    "Time taken to publish one outbox event",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"sink"},
)

var RemindersSentTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "randevulu_reminders_sent_total",
		Help: "Appointment reminders dispatched",
	},
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			RateLimitRejectionsTotal,
			AppointmentTransitionsTotal,
			SideEffectFailuresTotal,
			AvailabilityFailOpenTotal,
			NotificationsCreatedTotal,
			EventsPublishedTotal,
			EventPublishDuration,
			RemindersSentTotal,
		)
	})
}
