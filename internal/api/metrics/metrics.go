// Package metrics defines the Prometheus metrics of the marketplace client.
// All metrics live in the default registry and are served on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

const namespace = "marketplace_client"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - outcome: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// RegistrationsTotal counts successful registrations.
// Labels:
//   - role: the account type registered
//   - logged_in: "true" when the registration established a session
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful registrations.",
	},
	[]string{"role", "logged_in"},
)

// BootstrapTotal counts session bootstrap runs.
// Label:
//   - outcome: "success" or "failure"
var BootstrapTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bootstrap_total",
		Help:      "Total number of session bootstrap runs, by outcome.",
	},
	[]string{"outcome"},
)

// AuthRejectionsTotal counts 401 answers that cleared the stored credential.
var AuthRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of server authentication rejections handled.",
	},
)

// ── Navigation metrics ────────────────────────────────────────────────────────

// GuardDecisionsTotal counts navigation guard decisions.
// Labels:
//   - outcome: proceed, redirect_login, redirect_unauthorized, redirect_landing, superseded
//   - rule: the 1-based rule that decided
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of navigation guard decisions, by outcome and rule.",
	},
	[]string{"outcome", "rule"},
)

// Recorder feeds the session core into the metrics above.
type Recorder struct{}

func NewRecorder() Recorder { return Recorder{} }

func (Recorder) LoginAttempt(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (Recorder) Registration(role domain.Role, loggedIn bool) {
	RegistrationsTotal.WithLabelValues(string(role), strconv.FormatBool(loggedIn)).Inc()
}

func (Recorder) Bootstrap(outcome string) {
	BootstrapTotal.WithLabelValues(outcome).Inc()
}

func (Recorder) AuthRejected() {
	AuthRejectionsTotal.Inc()
}

func (Recorder) GuardDecision(outcome domain.Outcome, rule int) {
	GuardDecisionsTotal.WithLabelValues(string(outcome), strconv.Itoa(rule)).Inc()
}
