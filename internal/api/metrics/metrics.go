// Package metrics defines all custom Prometheus metrics for the quiz
// platform data gateway. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// ActionsTotal counts dispatched gateway actions.
// Labels:
//   - action: the envelope action (e.g. "find", "login")
//   - outcome: "ok" or "error"
var ActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Total number of gateway actions dispatched, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ActionDuration measures how long a single action takes end-to-end,
// including the store round trip.
var ActionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "action_duration_seconds",
		Help:      "Duration of gateway action execution, by action.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)

// AuthFailuresTotal counts rejected auth operations.
// Label:
//   - reason: "invalid_credentials", "invalid_token", "token_expired",
//     "user_not_found", "duplicate_email"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed auth operations, by reason.",
	},
	[]string{"reason"},
)

// LoginsThrottledTotal counts logins rejected by the attempt limiter.
var LoginsThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_throttled_total",
		Help:      "Total number of login attempts rejected by the rate limiter.",
	},
)
