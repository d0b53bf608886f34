// Package monitoring holds the Prometheus collectors exported at /metrics.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	bookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_booking_attempts_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_cancellations_total",
			Help: "Ticket cancellations by outcome",
		},
		[]string{"outcome"},
	)

	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_registrations_total",
			Help: "User registrations by outcome",
		},
		[]string{"outcome"},
	)

	liveTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinema_live_tickets",
			Help: "Number of tickets currently held",
		},
	)

	stateSaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_state_save_duration_seconds",
			Help:    "Duration of persistence gateway saves",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"status"},
	)
)

// TrackBooking counts a booking attempt.
func TrackBooking(outcome string) { bookingAttempts.WithLabelValues(outcome).Inc() }

// TrackCancellation counts a cancellation attempt.
func TrackCancellation(outcome string) { cancellations.WithLabelValues(outcome).Inc() }

// TrackRegistration counts a registration attempt.
func TrackRegistration(outcome string) { registrations.WithLabelValues(outcome).Inc() }

// SetLiveTickets records the ticket count after a committed change.
func SetLiveTickets(n int) { liveTickets.Set(float64(n)) }

// TrackStateSave observes the latency of one Save call.
func TrackStateSave(d time.Duration, err error) {
	status := OutcomeOK
	if err != nil {
		status = OutcomeError
	}
	stateSaveDuration.WithLabelValues(status).Observe(d.Seconds())
}
