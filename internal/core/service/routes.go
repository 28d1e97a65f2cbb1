package service

import (
	"net/url"
	"strings"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// Route declares a destination. Children inherit the parent's requirements
// and extend its path.
type Route struct {
	Name     string
	Path     string
	Requires domain.Requirements
	Children []Route
}

type compiledRoute struct {
	name     string
	path     string
	segments []string
	requires domain.Requirements
}

// Routes is the catalog of known destinations.
type Routes struct {
	compiled []compiledRoute
	byName   map[string]compiledRoute
}

func NewRoutes(routes ...Route) *Routes {
	r := &Routes{byName: make(map[string]compiledRoute)}
	for _, route := range routes {
		r.add("", domain.Requirements{}, route)
	}
	return r
}

func (r *Routes) add(prefix string, inherited domain.Requirements, route Route) {
	full := joinPath(prefix, route.Path)
	req := inherited.Merge(route.Requires)
	if route.Name != "" {
		c := compiledRoute{name: route.Name, path: full, segments: splitPath(full), requires: req}
		r.compiled = append(r.compiled, c)
		r.byName[route.Name] = c
	}
	for _, child := range route.Children {
		r.add(full, req, child)
	}
}

// DefaultRoutes returns the marketplace destination table.
func DefaultRoutes() *Routes {
	customer := domain.Requirements{RequiresAuth: true, RequiresCustomer: true}
	professional := domain.Requirements{RequiresAuth: true, RequiresProfessional: true}

	return NewRoutes(
		Route{Name: "home", Path: domain.PathRoot},
		Route{Name: "dashboard", Path: domain.PathDashboard, Requires: domain.Requirements{RequiresAuth: true}},
		Route{Name: "login", Path: domain.PathLogin, Requires: domain.Requirements{GuestOnly: true}},
		Route{Name: "register", Path: domain.PathRegister, Requires: domain.Requirements{GuestOnly: true}},
		Route{Name: "unauthorized", Path: domain.PathUnauthorized},

		Route{Name: "customer.dashboard", Path: domain.PathCustomerDashboard, Requires: customer},
		Route{Name: "customer.services", Path: "/customer/services", Requires: customer},
		Route{Name: "customer.requests", Path: "/customer/requests", Requires: customer},
		Route{Name: "customer.request-details", Path: "/customer/requests/:id", Requires: customer},
		Route{Name: "customer.summary", Path: "/customer/summary", Requires: customer},
		Route{Name: "customer.profile", Path: "/customer/profile", Requires: customer},

		Route{Name: "professional.dashboard", Path: domain.PathProfessionalDashboard, Requires: professional},
		Route{Name: "professional.profile", Path: "/professional/profile", Requires: professional},
		Route{Name: "professional.summary", Path: "/professional/summary", Requires: professional},
		Route{Name: "professional.requests", Path: "/professional/requests", Requires: professional},

		Route{
			Path:     domain.PathAdminRoot,
			Requires: domain.Requirements{RequiresAuth: true, RequiresAdmin: true},
			Children: []Route{
				{Name: "admin-dashboard", Path: ""},
				{Name: "admin-services", Path: "services"},
				{Name: "admin-professionals", Path: "professionals"},
				{Name: "admin-customers", Path: "customers"},
				{Name: "admin-requests", Path: "requests"},
				{Name: "admin-summary", Path: "summary"},
			},
		},
	)
}

// Resolve turns a full path such as "/admin/services?tab=2" into a
// destination. Unknown paths resolve with no requirements and ok=false.
func (r *Routes) Resolve(fullPath string) (domain.Destination, bool) {
	u, err := url.Parse(fullPath)
	if err != nil {
		return domain.Destination{Path: fullPath}, false
	}
	path := u.Path
	if path == "" {
		path = domain.PathRoot
	}
	var query url.Values
	if u.RawQuery != "" {
		query = u.Query()
	}

	segs := splitPath(path)
	for _, c := range r.compiled {
		if matchSegments(c.segments, segs) {
			return domain.Destination{Name: c.name, Path: path, Query: query, Requires: c.requires}, true
		}
	}
	return domain.Destination{Path: path, Query: query}, false
}

// Named returns the destination registered under name.
func (r *Routes) Named(name string) (domain.Destination, bool) {
	c, ok := r.byName[name]
	if !ok {
		return domain.Destination{}, false
	}
	return domain.Destination{Name: c.name, Path: c.path, Requires: c.requires}, true
}

// Landing returns the role-landing destination.
func (r *Routes) Landing(role domain.Role) domain.Destination {
	d, _ := r.Resolve(domain.LandingPath(role))
	return d
}

// Login returns the login destination, carrying redirect when non-empty.
func (r *Routes) Login(redirect string) domain.Destination {
	d, _ := r.Resolve(domain.PathLogin)
	if redirect != "" {
		d.Query = url.Values{domain.RedirectParam: []string{redirect}}
	}
	return d
}

func (r *Routes) Unauthorized() domain.Destination {
	d, _ := r.Resolve(domain.PathUnauthorized)
	return d
}

func joinPath(prefix, p string) string {
	switch {
	case prefix == "":
		return p
	case p == "":
		return prefix
	case strings.HasPrefix(p, "/"):
		return p
	default:
		return strings.TrimSuffix(prefix, "/") + "/" + p
	}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}
