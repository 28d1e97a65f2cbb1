package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// sessionFor builds a fixture in the given state. An empty role means
// logged out.
func sessionFor(t *testing.T, role domain.Role) *fixture {
	t.Helper()
	f := newFixture()
	if role != "" {
		f.loggedInAs(role)
	}
	return f
}

func decide(t *testing.T, f *fixture, path string) domain.Decision {
	t.Helper()
	dest, _ := f.routes.Resolve(path)
	d, err := NewGuard(f.session, f.routes, nil, zerolog.Nop()).Decide(context.Background(), dest)
	require.NoError(t, err)
	return d
}

var allPaths = []string{
	"/", "/dashboard", "/login", "/register", "/unauthorized",
	"/customer/dashboard", "/customer/services", "/customer/requests/42", "/customer/profile",
	"/professional/dashboard", "/professional/profile",
	"/admin", "/admin/professionals", "/admin/customers",
	"/about",
}

var allRoles = []domain.Role{"", domain.RoleCustomer, domain.RoleProfessional, domain.RoleAdmin}

func TestGuard_NoRequirementsAlwaysProceedsWhenNotRedirectedEarlier(t *testing.T) {
	for _, role := range allRoles {
		for _, path := range []string{"/unauthorized", "/about"} {
			f := sessionFor(t, role)
			d := decide(t, f, path)
			assert.Equal(t, domain.OutcomeProceed, d.Outcome, "role=%q path=%s", role, path)
		}
	}
	// Public views that are neither guest-only nor root aliases proceed for
	// everyone; "/" and guest views proceed for anonymous users.
	f := sessionFor(t, "")
	for _, path := range []string{"/", "/login", "/register"} {
		assert.Equal(t, domain.OutcomeProceed, decide(t, f, path).Outcome, path)
	}
}

func TestGuard_AuthenticatedGuestAndRootGoToRoleLanding(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleCustomer, domain.RoleProfessional, domain.RoleAdmin} {
		for _, path := range []string{"/", "/dashboard", "/login", "/register"} {
			f := sessionFor(t, role)
			d := decide(t, f, path)
			require.Equal(t, domain.OutcomeRedirectLanding, d.Outcome, "role=%s path=%s", role, path)
			assert.Equal(t, domain.LandingPath(role), d.Target.Path, "role=%s path=%s", role, path)
		}
	}
}

func TestGuard_UnauthenticatedGoesToLoginWithResumeTarget(t *testing.T) {
	f := sessionFor(t, "")
	for _, path := range []string{"/customer/dashboard", "/customer/requests/42", "/professional/profile", "/admin/customers", "/dashboard"} {
		d := decide(t, f, path)
		require.Equal(t, domain.OutcomeRedirectLogin, d.Outcome, path)
		assert.Equal(t, domain.PathLogin, d.Target.Path)
		assert.Equal(t, path, d.Target.RedirectTarget())
	}
}

func TestGuard_WrongRoleGoesToUnauthorized(t *testing.T) {
	cases := []struct {
		role domain.Role
		path string
	}{
		{domain.RoleCustomer, "/admin"},
		{domain.RoleCustomer, "/professional/dashboard"},
		{domain.RoleProfessional, "/customer/requests/1"},
		{domain.RoleProfessional, "/admin/services"},
		{domain.RoleAdmin, "/customer/profile"},
		{domain.RoleAdmin, "/professional/summary"},
	}
	for _, c := range cases {
		f := sessionFor(t, c.role)
		d := decide(t, f, c.path)
		require.Equal(t, domain.OutcomeRedirectUnauthorized, d.Outcome, "role=%s path=%s", c.role, c.path)
		assert.Equal(t, domain.PathUnauthorized, d.Target.Path)
	}
}

func TestGuard_MatchingRoleProceeds(t *testing.T) {
	cases := map[domain.Role]string{
		domain.RoleCustomer:     "/customer/requests/9",
		domain.RoleProfessional: "/professional/dashboard",
		domain.RoleAdmin:        "/admin/professionals",
	}
	for role, path := range cases {
		f := sessionFor(t, role)
		d := decide(t, f, path)
		assert.Equal(t, domain.OutcomeProceed, d.Outcome, "role=%s path=%s", role, path)
		assert.Equal(t, 7, d.Rule)
	}
}

func TestGuard_EveryDecisionIsOneOfTheDocumentedOutcomes(t *testing.T) {
	for _, role := range allRoles {
		for _, path := range allPaths {
			f := sessionFor(t, role)
			d := decide(t, f, path)
			switch d.Outcome {
			case domain.OutcomeProceed:
				assert.Empty(t, d.Target.Path)
			case domain.OutcomeRedirectLogin:
				assert.Empty(t, role, "authenticated users are never sent to login (%s)", path)
			case domain.OutcomeRedirectUnauthorized:
				assert.NotEmpty(t, role, "anonymous users are never sent to unauthorized (%s)", path)
			case domain.OutcomeRedirectLanding:
				assert.Equal(t, domain.LandingPath(role), d.Target.Path)
			default:
				t.Fatalf("unexpected outcome %s for role=%q path=%s", d.Outcome, role, path)
			}
		}
	}
}

func TestGuard_BootstrapsBeforeDeciding(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.SetToken(context.Background(), "restored"))
	f.gateway.profileFn = func(context.Context) (*domain.User, error) {
		return userOf(domain.RoleProfessional), nil
	}

	d := decide(t, f, "/professional/dashboard")

	assert.Equal(t, domain.OutcomeProceed, d.Outcome)
	assert.Equal(t, 1, f.gateway.profileCalls)
	assert.True(t, f.session.IsProfessional())
}

func TestGuard_BootstrapFailureRedirectsToLogin(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.SetToken(context.Background(), "expired"))
	f.gateway.profileFn = func(context.Context) (*domain.User, error) {
		return nil, apiErr(http.StatusUnauthorized, "Token has expired")
	}

	d := decide(t, f, "/customer/dashboard")

	require.Equal(t, domain.OutcomeRedirectLogin, d.Outcome)
	assert.Equal(t, 1, d.Rule)
	assert.Equal(t, "/customer/dashboard", d.Target.RedirectTarget())
	_, ok := f.store.Token()
	assert.False(t, ok)
}

func TestGuard_SupersededBootstrap(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.SetToken(context.Background(), "restored"))
	guard := NewGuard(f.session, f.routes, nil, zerolog.Nop())

	f.gateway.profileFn = func(ctx context.Context) (*domain.User, error) {
		// A newer navigation starts while this bootstrap is in flight.
		guard.generation.Add(1)
		return userOf(domain.RoleCustomer), nil
	}

	dest, _ := f.routes.Resolve("/customer/dashboard")
	d, err := guard.Decide(context.Background(), dest)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuperseded, d.Outcome)
}

func TestGuard_RejectionThenNextNavigationGoesToLogin(t *testing.T) {
	f := sessionFor(t, domain.RoleCustomer)
	require.Equal(t, domain.OutcomeProceed, decide(t, f, "/customer/services").Outcome)

	// The transport clears the store and notifies the session.
	require.NoError(t, f.store.Clear(context.Background()))
	f.session.HandleAuthRejected(context.Background())

	d := decide(t, f, "/customer/services")
	require.Equal(t, domain.OutcomeRedirectLogin, d.Outcome)
	assert.Equal(t, "/customer/services", d.Target.RedirectTarget())
}

func TestGuard_InvalidSessionIsNotAuthenticated(t *testing.T) {
	f := sessionFor(t, domain.RoleAdmin)
	f.backend.deleteErr = errBackend
	f.session.Clear(context.Background())
	require.Equal(t, domain.SessionInvalid, f.session.State().Kind)

	d := decide(t, f, "/admin")
	assert.Equal(t, domain.OutcomeRedirectLogin, d.Outcome)
	assert.Equal(t, 5, d.Rule)
}
