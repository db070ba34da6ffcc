// Package metrics defines the custom Prometheus metrics of the reviews API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default registry on import through promauto;
// HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reviewhub"

// ── Signup metrics ────────────────────────────────────────────────────────────

// SignupsTotal counts confirmation requests.
// Label:
//   - result: "sent", "conflict", "invalid", "delivery_failed" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of confirmation code requests, by result.",
	},
	[]string{"result"},
)

// TokensTotal counts confirmation code redemptions.
// Label:
//   - result: "issued", "invalid_code", "not_found" or "error"
var TokensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_total",
		Help:      "Total number of token requests, by result.",
	},
	[]string{"result"},
)

// NotificationsTotal counts confirmation deliveries.
// Labels:
//   - transport: "log", "smtp" or "amqp"
//   - result: "ok" or "error"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of confirmation deliveries, by transport and result.",
	},
	[]string{"transport", "result"},
)

// NotificationDuration measures one delivery attempt.
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a confirmation delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"transport"},
)

// RateLimitedTotal counts requests rejected by the signup/token limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter, by route.",
	},
	[]string{"route"},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// ReviewsCreatedTotal counts review creation attempts.
// Label:
//   - result: "created", "duplicate" or "invalid"
var ReviewsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_created_total",
		Help:      "Total number of review creation attempts, by result.",
	},
	[]string{"result"},
)

// CommentsCreatedTotal counts created comments.
var CommentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_created_total",
		Help:      "Total number of comments created.",
	},
)

// AuthorizationDeniedTotal counts requests refused by the access policy.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests denied by the access policy.",
	},
	[]string{"reason"},
)

// ── Loader metrics ────────────────────────────────────────────────────────────

// LoaderRowsTotal counts rows handled by the CSV loader.
// Labels:
//   - table: e.g. "titles"
//   - result: "created", "skipped" or "error"
var LoaderRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loader_rows_total",
		Help:      "Total number of CSV rows handled by the loader.",
	},
	[]string{"table", "result"},
)

// LoaderQueueDepth tracks rows waiting in each loader worker channel.
var LoaderQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "loader_queue_depth",
		Help:      "Current number of rows pending in each loader worker channel.",
	},
	[]string{"worker_id"},
)
