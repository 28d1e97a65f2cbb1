package domain

import (
	"net/url"
	"strings"
)

// Symbolic paths of the destinations the session core itself produces.
const (
	PathRoot                  = "/"
	PathDashboard             = "/dashboard"
	PathLogin                 = "/login"
	PathRegister              = "/register"
	PathUnauthorized          = "/unauthorized"
	PathCustomerDashboard     = "/customer/dashboard"
	PathProfessionalDashboard = "/professional/dashboard"
	PathAdminRoot             = "/admin"
)

// RedirectParam is the query parameter carrying a resumable destination.
const RedirectParam = "redirect"

// Requirements are the access flags a destination declares.
type Requirements struct {
	RequiresAuth         bool `json:"requires_auth,omitempty"`
	RequiresAdmin        bool `json:"requires_admin,omitempty"`
	RequiresProfessional bool `json:"requires_professional,omitempty"`
	RequiresCustomer     bool `json:"requires_customer,omitempty"`
	GuestOnly            bool `json:"guest_only,omitempty"`
}

// None reports whether no access requirement is declared. GuestOnly is not
// an access requirement.
func (r Requirements) None() bool {
	return !r.RequiresAuth && !r.RequiresAdmin && !r.RequiresProfessional && !r.RequiresCustomer
}

// Permits reports whether role satisfies every role-specific flag.
func (r Requirements) Permits(role Role) bool {
	if r.RequiresAdmin && role != RoleAdmin {
		return false
	}
	if r.RequiresProfessional && role != RoleProfessional {
		return false
	}
	if r.RequiresCustomer && role != RoleCustomer {
		return false
	}
	return true
}

// Merge returns the union of both flag sets.
func (r Requirements) Merge(o Requirements) Requirements {
	return Requirements{
		RequiresAuth:         r.RequiresAuth || o.RequiresAuth,
		RequiresAdmin:        r.RequiresAdmin || o.RequiresAdmin,
		RequiresProfessional: r.RequiresProfessional || o.RequiresProfessional,
		RequiresCustomer:     r.RequiresCustomer || o.RequiresCustomer,
		GuestOnly:            r.GuestOnly || o.GuestOnly,
	}
}

// Destination is a requested or produced navigation target.
type Destination struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Query    url.Values   `json:"query,omitempty"`
	Requires Requirements `json:"requires"`
}

// FullPath renders path and query, e.g. "/login?redirect=%2Fadmin".
func (d Destination) FullPath() string {
	if len(d.Query) == 0 {
		return d.Path
	}
	return d.Path + "?" + d.Query.Encode()
}

// IsRootAlias reports whether the destination is "/" or "/dashboard".
func (d Destination) IsRootAlias() bool {
	p := strings.TrimSuffix(d.Path, "/")
	return p == "" || p == PathDashboard
}

// RedirectTarget returns the resumable destination carried in the query.
func (d Destination) RedirectTarget() string {
	if d.Query == nil {
		return ""
	}
	return d.Query.Get(RedirectParam)
}

// LandingPath returns the role-landing destination path.
func LandingPath(role Role) string {
	switch role {
	case RoleCustomer:
		return PathCustomerDashboard
	case RoleProfessional:
		return PathProfessionalDashboard
	case RoleAdmin:
		return PathAdminRoot
	default:
		return PathDashboard
	}
}

// Outcome is the verdict of the guard pipeline.
type Outcome string

const (
	OutcomeProceed              Outcome = "proceed"
	OutcomeRedirectLogin        Outcome = "redirect_login"
	OutcomeRedirectUnauthorized Outcome = "redirect_unauthorized"
	OutcomeRedirectLanding      Outcome = "redirect_landing"
	// OutcomeSuperseded marks a decision whose navigation was overtaken by
	// a newer one while it was suspended on bootstrap.
	OutcomeSuperseded Outcome = "superseded"
)

// Decision is the guard result. Target is set for every redirect.
type Decision struct {
	Outcome Outcome
	Target  Destination
	// Rule is the 1-based index of the rule that decided.
	Rule int
}

func (d Decision) Redirects() bool {
	switch d.Outcome {
	case OutcomeRedirectLogin, OutcomeRedirectUnauthorized, OutcomeRedirectLanding:
		return true
	}
	return false
}
