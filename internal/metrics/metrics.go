// Package metrics declares the Prometheus collectors of the booking API.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "beauty_booking"

// Token rejection reasons.
const (
	ReasonMissing = "missing"
	ReasonExpired = "expired"
	ReasonInvalid = "invalid"
)

// Auth outcomes.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingSlotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_slot_conflicts_total",
			Help:      "Count of bookings rejected because the slot was taken.",
		},
	)

	bookingStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"status"},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_reminders_sent_total",
			Help:      "Count of booking reminders published.",
		},
	)

	tokenRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_token_rejections_total",
			Help:      "Count of requests rejected by the bearer gate.",
		},
		[]string{"reason"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Count of login attempts by result.",
		},
		[]string{"result"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_registrations_total",
			Help:      "Count of registration attempts by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingSlotConflicts,
			bookingStatusChanges,
			remindersSent,
			tokenRejections,
			logins,
			registrations,
			httpRequests,
			httpDuration,
		)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncSlotConflict() {
	bookingSlotConflicts.Inc()
}

func IncStatusChange(status string) {
	bookingStatusChanges.WithLabelValues(status).Inc()
}

func IncReminderSent() {
	remindersSent.Inc()
}

func IncTokenRejected(reason string) {
	tokenRejections.WithLabelValues(reason).Inc()
}

func IncLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

func IncRegistration(result string) {
	registrations.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route, code string, seconds float64) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}
