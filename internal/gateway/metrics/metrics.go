// Package metrics holds the gateway's Prometheus collectors. They are
// registered on the default registry through promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ifrs_console"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"
	OutcomeError   = "error"
)

var (
	// LoginsTotal counts password logins against the backend.
	// outcome: success | failure | error
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Total number of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// TwoFactorVerificationsTotal counts second-factor checks.
	// method: totp | backup_code, outcome: success | failure | locked | error
	TwoFactorVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "twofactor",
			Name:      "verifications_total",
			Help:      "Total number of two-factor verifications by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	// LockoutsTotal counts how often an identity crossed the failure threshold.
	LockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "twofactor",
			Name:      "lockouts_total",
			Help:      "Total number of two-factor lockouts started.",
		},
	)

	// EnrollmentsTotal counts enrollment transitions.
	// event: setup_started | enabled | disabled
	EnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "twofactor",
			Name:      "enrollments_total",
			Help:      "Total number of enrollment state changes by event.",
		},
		[]string{"event"},
	)

	// PermissionLoadsTotal counts permission record fetches.
	// outcome: success | failure | stale
	PermissionLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "permissions",
			Name:      "loads_total",
			Help:      "Total number of permission record loads by outcome.",
		},
		[]string{"outcome"},
	)

	// PageDecisionsTotal counts protected page gate decisions.
	// decision: granted | denied
	PageDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "permissions",
			Name:      "page_decisions_total",
			Help:      "Total number of protected page decisions.",
		},
		[]string{"decision"},
	)

	// BackendRequestDurationSeconds tracks calls to the accounting backend.
	BackendRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of accounting backend calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// HousekeepingDeletedTotal counts rows removed by the cleanup worker.
	// kind: sessions | lockouts | access_requests | pending_setups
	HousekeepingDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "deleted_total",
			Help:      "Total number of expired records removed by kind.",
		},
		[]string{"kind"},
	)
)
