package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login and signup attempts by kind (login|signup) and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodlink_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"kind", "result"},
	)

	// ActiveSessions tracks sessions that are neither expired nor revoked.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodlink_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// DonationTransitions counts donation lifecycle transitions by target status.
	DonationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodlink_donation_transitions_total",
			Help: "Donation status transitions",
		},
		[]string{"status"},
	)

	// ClaimTransitions counts claim lifecycle transitions by target status.
	ClaimTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodlink_claim_transitions_total",
			Help: "Claim status transitions",
		},
		[]string{"status"},
	)

	// ApprovalConflicts counts approvals rejected because the donation was already locked.
	ApprovalConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodlink_claim_approval_conflicts_total",
			Help: "Claim approvals rejected because the donation was no longer available",
		},
	)

	// AggregationFailures counts stats/leaderboard computations that degraded to empty output.
	AggregationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodlink_aggregation_failures_total",
			Help: "Aggregation computations that fell back to empty results",
		},
		[]string{"view"},
	)

	// ExpiredListings reports available donations whose expiry date has passed.
	ExpiredListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodlink_expired_available_donations",
			Help: "Available donations past their expiry date at the last maintenance run",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodlink_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
