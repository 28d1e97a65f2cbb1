package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/ports"
)

const bootstrapTimeout = 30 * time.Second

// SessionService is the session controller. It is the only component that
// moves the session between phases; everything else reads through it.
type SessionService struct {
	store   ports.CredentialStore
	gateway ports.AuthGateway
	routes  *Routes
	log     zerolog.Logger
	rec     Recorder

	bootstrap singleflight.Group

	mu       sync.RWMutex
	phase    domain.Phase
	user     *domain.User
	rejected bool
	loading  bool
	lastErr  string
	nav      ports.Navigator
}

var _ ports.Session = (*SessionService)(nil)
var _ ports.SessionController = (*SessionService)(nil)

func NewSessionService(
	store ports.CredentialStore,
	gateway ports.AuthGateway,
	routes *Routes,
	rec Recorder,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		store:   store,
		gateway: gateway,
		routes:  routes,
		rec:     recorderOrNop(rec),
		log:     log,
		phase:   domain.PhaseLoggedOut,
	}
}

// AttachNavigator sets the navigator used to force a login redirect when
// the server rejects the credential.
func (s *SessionService) AttachNavigator(nav ports.Navigator) {
	s.mu.Lock()
	s.nav = nav
	s.mu.Unlock()
}

// Login authenticates and returns the role-landing destination.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.Destination, error) {
	s.begin(domain.PhaseLoggingIn)
	s.log.Info().Str("email", email).Msg("login attempt")

	resp, err := s.gateway.Login(ctx, email, password)
	if err == nil && (resp == nil || resp.AccessToken == "" || resp.User == nil) {
		err = &domain.APIError{Message: "login response missing credential", Kind: domain.ErrServerFault}
	}
	if err == nil {
		err = s.store.SetToken(ctx, resp.AccessToken)
	}
	if err != nil {
		s.fail(err)
		s.rec.LoginAttempt("failure")
		s.log.Warn().Str("email", email).Str("reason", domain.Message(err)).Msg("login failed")
		return domain.Destination{}, err
	}

	s.establish(resp.User)
	s.rec.LoginAttempt("success")
	s.log.Info().Str("email", email).Str("role", string(resp.User.Type)).Msg("login succeeded")
	return s.routes.Landing(resp.User.Type), nil
}

// Register signs up a new account. Only customer registrations keep the
// returned credential; professional accounts wait for admin approval.
func (s *SessionService) Register(ctx context.Context, reg domain.Registration) (*domain.RegistrationResult, error) {
	s.begin(s.Phase())

	resp, err := s.gateway.Register(ctx, reg)
	if err != nil {
		s.fail(err)
		s.log.Warn().Str("email", reg.Email).Str("reason", domain.Message(err)).Msg("registration failed")
		return nil, err
	}

	result := &domain.RegistrationResult{
		User:    resp.User.Clone(),
		Notice:  resp.Message,
		Landing: s.routes.Login(""),
	}

	role := reg.Type
	if resp.User != nil && resp.User.Type != "" {
		role = resp.User.Type
	}

	switch {
	case role == domain.RoleCustomer && resp.AccessToken != "" && resp.User != nil:
		if err := s.store.SetToken(ctx, resp.AccessToken); err != nil {
			s.fail(err)
			return nil, err
		}
		s.establish(resp.User)
		result.LoggedIn = true
		result.Landing = s.routes.Landing(role)
	default:
		if resp.AccessToken != "" {
			s.log.Warn().Str("email", reg.Email).Str("role", string(role)).Msg("discarding credential issued to non-customer registration")
		}
		s.finish()
	}

	s.rec.Registration(role, result.LoggedIn)
	s.log.Info().Str("email", reg.Email).Str("role", string(role)).Bool("logged_in", result.LoggedIn).Msg("registration succeeded")
	return result, nil
}

// FetchProfile loads the base profile and merges the role extension into
// the user record. A failed extension fetch keeps the base profile.
func (s *SessionService) FetchProfile(ctx context.Context) (*domain.User, error) {
	user, err := s.loadProfile(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Token(); !ok {
		return nil, domain.ErrNotAuthenticated
	}
	s.user = user
	s.rejected = false
	s.phase = domain.PhaseLoggedIn
	return user.Clone(), nil
}

// Bootstrap turns a restored token into a user record. Concurrent callers
// share one profile fetch. A caller whose ctx ends gets ctx.Err() and the
// session is left alone; only a failed fetch clears it.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if s.user != nil {
		s.mu.Unlock()
		return nil
	}
	if _, ok := s.store.Token(); !ok {
		s.phase = domain.PhaseLoggedOut
		s.mu.Unlock()
		return nil
	}
	s.phase = domain.PhaseBootstrapping
	s.mu.Unlock()

	// The shared fetch outlives any single caller: one navigation giving up
	// must not fail the others waiting on the same fetch.
	ch := s.bootstrap.DoChan("bootstrap", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bootstrapTimeout)
		defer cancel()
		return s.FetchProfile(fetchCtx)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.Clear(context.WithoutCancel(ctx))
		s.rec.Bootstrap("failure")
		s.log.Warn().Err(res.Err).Msg("session bootstrap failed")
		return fmt.Errorf("bootstrap session: %w", res.Err)
	}
	s.rec.Bootstrap("success")
	return nil
}

// Logout clears the session and returns the login destination. It never
// calls the marketplace API. The destination is always valid; a non-nil
// error means the stored credential survived and the session reads as
// Invalid until a later clear succeeds.
func (s *SessionService) Logout(ctx context.Context) (domain.Destination, error) {
	err := s.Clear(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = domain.CredentialNotRemovedMessage
		s.mu.Unlock()
	} else {
		s.log.Info().Msg("logged out")
	}
	return s.routes.Login(""), err
}

// Clear drops the credential and the user record. If the store cannot
// delete the credential the session reads as Invalid and the store error
// is returned.
func (s *SessionService) Clear(ctx context.Context) error {
	err := s.store.Clear(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.phase = domain.PhaseLoggedOut
	s.rejected = err != nil
	if err != nil {
		s.log.Error().Err(err).Msg("failed to clear credential")
	}
	return err
}

// HandleAuthRejected reacts to the transport reporting an authentication
// rejection. The credential store has already been cleared.
func (s *SessionService) HandleAuthRejected(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.phase = domain.PhaseLoggedOut
	if _, ok := s.store.Token(); ok {
		s.rejected = true
	}
	nav := s.nav
	s.mu.Unlock()

	s.rec.AuthRejected()

	if nav == nil {
		return
	}
	cur := nav.Current()
	if cur.Requires.None() {
		return
	}
	s.log.Info().Str("from", cur.FullPath()).Msg("session expired, redirecting to login")
	nav.Replace(s.routes.Login(cur.FullPath()))
}

// UpdateProfile writes base fields then role fields, then refetches. The
// two writes are independent; a failure after the first leaves a partial
// update that can be retried by resubmitting.
func (s *SessionService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	user := s.CurrentUser()
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	s.begin(s.Phase())

	if err := s.gateway.UpdateBaseProfile(ctx, update); err != nil {
		s.fail(err)
		return nil, err
	}
	if user.Type == domain.RoleCustomer || user.Type == domain.RoleProfessional {
		if err := s.gateway.UpdateRoleProfile(ctx, user.Type, update); err != nil {
			s.fail(err)
			s.log.Warn().Str("reason", domain.Message(err)).Msg("role profile update failed after base update")
			return nil, err
		}
	}

	refreshed, err := s.FetchProfile(ctx)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.finish()
	return refreshed, nil
}

func (s *SessionService) loadProfile(ctx context.Context) (*domain.User, error) {
	base, err := s.gateway.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, &domain.APIError{Message: "profile response missing user", Kind: domain.ErrServerFault}
	}

	if base.Type != domain.RoleCustomer && base.Type != domain.RoleProfessional {
		return base, nil
	}

	ext, err := s.gateway.RoleProfile(ctx, base.Type)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationExpired) {
			return nil, err
		}
		s.log.Warn().Err(err).Str("role", string(base.Type)).Msg("role profile unavailable, using base profile")
		return base, nil
	}
	return ext.Merge(base), nil
}

func (s *SessionService) begin(phase domain.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	s.loading = true
	s.lastErr = ""
}

func (s *SessionService) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.settleLocked()
}

func (s *SessionService) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = domain.Message(err)
	s.settleLocked()
}

func (s *SessionService) establish(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user.Clone()
	s.rejected = false
	s.loading = false
	s.phase = domain.PhaseLoggedIn
}

func (s *SessionService) settleLocked() {
	if _, ok := s.store.Token(); ok && s.user != nil {
		s.phase = domain.PhaseLoggedIn
		return
	}
	s.phase = domain.PhaseLoggedOut
}

// State derives the session state from the credential and user record.
func (s *SessionService) State() domain.SessionState {
	_, ok := s.store.Token()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.DeriveSession(ok, s.user, s.rejected)
}

func (s *SessionService) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *SessionService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *SessionService) IsAuthenticated() bool { return s.State().Authenticated() }

func (s *SessionService) UserType() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Type
}

func (s *SessionService) IsAdmin() bool        { return s.UserType() == domain.RoleAdmin }
func (s *SessionService) IsProfessional() bool { return s.UserType() == domain.RoleProfessional }
func (s *SessionService) IsCustomer() bool     { return s.UserType() == domain.RoleCustomer }

func (s *SessionService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError is the inline error text of the last failed operation.
func (s *SessionService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
