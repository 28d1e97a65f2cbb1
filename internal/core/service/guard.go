package service

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// Guard is the navigation guard pipeline. Rules are evaluated in a fixed
// order and the first match wins.
type Guard struct {
	session ports.Session
	routes  *Routes
	rec     Recorder
	log     zerolog.Logger

	generation atomic.Uint64
}

func NewGuard(session ports.Session, routes *Routes, rec Recorder, log zerolog.Logger) *Guard {
	return &Guard{session: session, routes: routes, rec: recorderOrNop(rec), log: log}
}

// Decide evaluates dest against the current session. It re-reads session
// state on every call. The only error is ctx cancellation.
func (g *Guard) Decide(ctx context.Context, dest domain.Destination) (domain.Decision, error) {
	d, err := g.decide(ctx, dest)
	if err != nil {
		return d, err
	}
	g.rec.GuardDecision(d.Outcome, d.Rule)
	if d.Outcome != domain.OutcomeProceed {
		g.log.Debug().
			Str("path", dest.FullPath()).
			Str("outcome", string(d.Outcome)).
			Str("target", d.Target.FullPath()).
			Int("rule", d.Rule).
			Msg("navigation redirected")
	}
	return d, nil
}

func (g *Guard) decide(ctx context.Context, dest domain.Destination) (domain.Decision, error) {
	gen := g.generation.Add(1)
	st := g.session.State()

	// 1. Token without user record: suspend on bootstrap.
	if st.Kind == domain.SessionBootstrapping {
		err := g.session.Bootstrap(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Decision{}, ctxErr
		}
		if g.generation.Load() != gen {
			return domain.Decision{Outcome: domain.OutcomeSuperseded, Rule: 1}, nil
		}
		if err != nil {
			g.session.Clear(ctx)
			return redirect(domain.OutcomeRedirectLogin, g.routes.Login(dest.FullPath()), 1), nil
		}
		st = g.session.State()
	}
	authenticated := st.Authenticated()

	// 2. Root alias for an authenticated user goes to the role landing.
	if dest.IsRootAlias() && authenticated {
		landing := g.routes.Landing(st.Role)
		if landing.Path == dest.Path {
			return proceed(2), nil
		}
		return redirect(domain.OutcomeRedirectLanding, landing, 2), nil
	}

	// 3. Guest-only views are never shown to an authenticated user.
	if dest.Requires.GuestOnly && authenticated {
		return redirect(domain.OutcomeRedirectLanding, g.routes.Landing(st.Role), 3), nil
	}

	// 4. No requirements.
	if dest.Requires.None() {
		return proceed(4), nil
	}

	// 5. Not logged in.
	if !authenticated {
		return redirect(domain.OutcomeRedirectLogin, g.routes.Login(dest.FullPath()), 5), nil
	}

	// 6. Logged in with the wrong role.
	if !dest.Requires.Permits(st.Role) {
		return redirect(domain.OutcomeRedirectUnauthorized, g.routes.Unauthorized(), 6), nil
	}

	return proceed(7), nil
}

func proceed(rule int) domain.Decision {
	return domain.Decision{Outcome: domain.OutcomeProceed, Rule: rule}
}

func redirect(outcome domain.Outcome, target domain.Destination, rule int) domain.Decision {
	return domain.Decision{Outcome: outcome, Target: target, Rule: rule}
}
