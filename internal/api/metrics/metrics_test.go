package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

func TestRecorder_GuardDecision(t *testing.T) {
	c := GuardDecisionsTotal.WithLabelValues(string(domain.OutcomeRedirectLogin), "5")
	before := testutil.ToFloat64(c)

	NewRecorder().GuardDecision(domain.OutcomeRedirectLogin, 5)

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("guard_decisions_total = %v, want %v", got, before+1)
	}
}

func TestRecorder_RegistrationLabels(t *testing.T) {
	c := RegistrationsTotal.WithLabelValues("professional", "false")
	before := testutil.ToFloat64(c)

	NewRecorder().Registration(domain.RoleProfessional, false)

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("registrations_total = %v, want %v", got, before+1)
	}
}

func TestRecorder_AuthRejected(t *testing.T) {
	before := testutil.ToFloat64(AuthRejectionsTotal)
	NewRecorder().AuthRejected()
	if got := testutil.ToFloat64(AuthRejectionsTotal); got != before+1 {
		t.Fatalf("auth_rejections_total = %v, want %v", got, before+1)
	}
}
