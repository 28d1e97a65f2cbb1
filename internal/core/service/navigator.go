package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/ports"
)

const maxRedirects = 5

// Navigation is the result of following the guard from a requested path.
type Navigation struct {
	Requested domain.Destination
	Final     domain.Destination
	Decisions []domain.Decision
	// Known is false when the final path matched no route.
	Known bool
}

// Redirected reports whether the final destination differs from the
// requested one.
func (n Navigation) Redirected() bool {
	return n.Final.FullPath() != n.Requested.FullPath()
}

// Superseded reports whether a newer navigation overtook this one.
func (n Navigation) Superseded() bool {
	return len(n.Decisions) > 0 && n.Decisions[len(n.Decisions)-1].Outcome == domain.OutcomeSuperseded
}

// Navigator owns the current location and runs every navigation through
// the guard.
type Navigator struct {
	guard  *Guard
	routes *Routes

	mu      sync.RWMutex
	current domain.Destination
}

var _ ports.Navigator = (*Navigator)(nil)

func NewNavigator(guard *Guard, routes *Routes) *Navigator {
	home, _ := routes.Resolve(domain.PathRoot)
	return &Navigator{guard: guard, routes: routes, current: home}
}

// Navigate resolves fullPath, follows guard redirects and records the final
// location. A superseded navigation leaves the location untouched.
func (n *Navigator) Navigate(ctx context.Context, fullPath string) (Navigation, error) {
	dest, known := n.routes.Resolve(fullPath)
	nav := Navigation{Requested: dest}

	for i := 0; i <= maxRedirects; i++ {
		decision, err := n.guard.Decide(ctx, dest)
		if err != nil {
			return nav, err
		}
		nav.Decisions = append(nav.Decisions, decision)

		switch {
		case decision.Outcome == domain.OutcomeSuperseded:
			nav.Final = n.Current()
			return nav, nil
		case !decision.Redirects():
			nav.Final, nav.Known = dest, known
			n.Replace(dest)
			return nav, nil
		}
		dest = decision.Target
		_, known = n.routes.Resolve(dest.Path)
	}
	return nav, fmt.Errorf("navigate %s: too many redirects", fullPath)
}

func (n *Navigator) Current() domain.Destination {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Replace sets the location without consulting the guard.
func (n *Navigator) Replace(dest domain.Destination) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = dest
}
