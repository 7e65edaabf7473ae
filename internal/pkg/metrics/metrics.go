// Package metrics defines and registers all custom Prometheus metrics for the
// todoapp auth subsystem. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the /metrics route.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

const (
	namespace = "todoapp"
	subsystem = "auth"
)

// ── Token metrics ─────────────────────────────────────────────────────────────

// TokenVerificationsTotal counts token verifications.
// Labels:
//   - kind: the expected token kind (e.g. "access", "refresh")
//   - result: "ok" or a failure reason (see Reason)
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications, by expected kind and result.",
	},
	[]string{"kind", "result"},
)

// RenewalsTotal counts access-token renewal attempts.
// Label:
//   - result: "ok" or a failure reason
var RenewalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "renewals_total",
		Help:      "Total number of access-token renewal attempts, by result.",
	},
	[]string{"result"},
)

// ActionTokenReplaysTotal counts single-use tokens presented a second time.
var ActionTokenReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "action_token_replays_total",
		Help:      "Total number of already-consumed action tokens presented again.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts credential logins.
// Label:
//   - result: "ok", "bad_credentials", "locked" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "login_attempts_total",
		Help:      "Total number of credential logins, by result.",
	},
	[]string{"result"},
)

// AccountTransitionsTotal counts effective account state changes. No-op
// transitions are not counted.
// Label:
//   - transition: "verify", "lock", "unlock", "disable", "enable",
//     "failed_login", "reset_login_attempts", "delete_unverified"
var AccountTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "account_transitions_total",
		Help:      "Total number of applied account lifecycle transitions.",
	},
	[]string{"transition"},
)

// GateDecisionsTotal counts request gate outcomes.
// Labels:
//   - outcome: "pass_through", "admitted" or "rejected"
//   - reason: failure reason for rejections, empty otherwise
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "gate_decisions_total",
		Help:      "Total number of request authentication gate decisions.",
	},
	[]string{"outcome", "reason"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsQueueDepth tracks pending notifications per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures a single hand-off to the notifier.
// Labels:
//   - kind: notification kind ("verification", "unlock", "enable")
//   - result: "ok" or "error"
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of notification delivery from dequeue to notifier return.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind", "result"},
)

// Reason converts an auth error into a low-cardinality label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, domain.ErrClaimsMissing):
		return "claims_missing"
	case errors.Is(err, domain.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrAccessTokenCreationFailed):
		return "access_token_still_valid"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, domain.ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "account_disabled"
	default:
		return "error"
	}
}
