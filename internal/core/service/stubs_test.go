package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu        sync.Mutex
	token     string
	present   bool
	saveErr   error
	deleteErr error
	saves     int
	deletes   int
}

func (b *stubBackend) Load(context.Context) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, b.present, nil
}

func (b *stubBackend) Save(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	b.token, b.present = token, true
	return nil
}

func (b *stubBackend) Delete(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deletes++
	b.token, b.present = "", false
	return nil
}

func (b *stubBackend) Ping(context.Context) error { return nil }

func (b *stubBackend) stored() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, b.present
}

type stubGateway struct {
	loginFn       func(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	registerFn    func(ctx context.Context, reg domain.Registration) (*domain.AuthResponse, error)
	profileFn     func(ctx context.Context) (*domain.User, error)
	roleProfileFn func(ctx context.Context, role domain.Role) (*domain.ProfileExtension, error)
	updateBaseFn  func(ctx context.Context, update domain.ProfileUpdate) error
	updateRoleFn  func(ctx context.Context, role domain.Role, update domain.ProfileUpdate) error

	mu           sync.Mutex
	profileCalls int
}

func (g *stubGateway) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	return g.loginFn(ctx, email, password)
}

func (g *stubGateway) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResponse, error) {
	return g.registerFn(ctx, reg)
}

func (g *stubGateway) Profile(ctx context.Context) (*domain.User, error) {
	g.mu.Lock()
	g.profileCalls++
	g.mu.Unlock()
	return g.profileFn(ctx)
}

func (g *stubGateway) RoleProfile(ctx context.Context, role domain.Role) (*domain.ProfileExtension, error) {
	if g.roleProfileFn == nil {
		return &domain.ProfileExtension{}, nil
	}
	return g.roleProfileFn(ctx, role)
}

func (g *stubGateway) UpdateBaseProfile(ctx context.Context, update domain.ProfileUpdate) error {
	return g.updateBaseFn(ctx, update)
}

func (g *stubGateway) UpdateRoleProfile(ctx context.Context, role domain.Role, update domain.ProfileUpdate) error {
	return g.updateRoleFn(ctx, role, update)
}

type stubNavigator struct {
	current  domain.Destination
	replaced []domain.Destination
}

func (n *stubNavigator) Current() domain.Destination { return n.current }

func (n *stubNavigator) Replace(dest domain.Destination) {
	n.current = dest
	n.replaced = append(n.replaced, dest)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func apiErr(status int, msg string) *domain.APIError {
	return &domain.APIError{Message: msg, Kind: domain.KindForStatus(status), Status: status}
}

func userOf(role domain.Role) *domain.User {
	return &domain.User{ID: 7, Email: string(role) + "@example.com", Name: "Test", Type: role}
}

type fixture struct {
	backend *stubBackend
	store   *CredentialStore
	gateway *stubGateway
	session *SessionService
	routes  *Routes
}

func newFixture() *fixture {
	backend := &stubBackend{}
	store := NewCredentialStore(backend)
	gateway := &stubGateway{}
	routes := DefaultRoutes()
	return &fixture{
		backend: backend,
		store:   store,
		gateway: gateway,
		routes:  routes,
		session: NewSessionService(store, gateway, routes, nil, zerolog.Nop()),
	}
}

// loggedInAs places the fixture in an authenticated session for role.
func (f *fixture) loggedInAs(role domain.Role) {
	f.gateway.loginFn = func(context.Context, string, string) (*domain.AuthResponse, error) {
		return &domain.AuthResponse{AccessToken: "tok-" + string(role), User: userOf(role)}, nil
	}
	if _, err := f.session.Login(context.Background(), "x@example.com", "secret"); err != nil {
		panic(err)
	}
}

var errBackend = errors.New("backend unavailable")
