// Package app assembles the marketplace client from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/api"
	"github.com/servicehub/marketplace-client/internal/api/metrics"
	"github.com/servicehub/marketplace-client/internal/core/service"
	"github.com/servicehub/marketplace-client/internal/infrastructure/storage"
	"github.com/servicehub/marketplace-client/internal/infrastructure/transport"
	"github.com/servicehub/marketplace-client/internal/pkg/config"
)

// App is a wired client: one credential store, one session, one navigator
// and the web shell in front of them.
type App struct {
	Echo      *echo.Echo
	Store     *service.CredentialStore
	Session   *service.SessionService
	Navigator *service.Navigator

	closers []func() error
}

// Options overrides pieces of the default wiring.
type Options struct {
	// Transport is the base round tripper under the interceptor.
	Transport http.RoundTripper
	// Registry receives HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
	// Recorder receives session metrics. Nil means the Prometheus recorder.
	Recorder service.Recorder
}

// New opens the token backend, restores any persisted credential and wires
// every component.
func New(ctx context.Context, cfg *config.Config, opts Options, log zerolog.Logger) (*App, error) {
	backend, closeBackend, err := storage.Open(ctx, storage.Options{
		Kind:       cfg.Store.Kind,
		FilePath:   cfg.Store.FilePath,
		SQLitePath: cfg.Store.SQLitePath,
		Redis: storage.RedisConfig{
			Addr: cfg.Store.RedisAddr,
			DB:   cfg.Store.RedisDB,
			Key:  storage.DefaultRedisKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	a := &App{closers: []func() error{closeBackend}}

	a.Store = service.NewCredentialStore(backend)
	if err := a.Store.Restore(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("restore credential: %w", err)
	}
	if token, ok := a.Store.Token(); ok {
		ev := log.Info().Str("store", cfg.Store.Kind)
		if exp, ok := transport.TokenExpiry(token); ok {
			ev = ev.Time("expires_at", exp)
		}
		ev.Msg("restored credential")
	}

	interceptor := transport.NewInterceptor(opts.Transport, a.Store, log.With().Str("component", "transport").Logger())
	client, err := transport.NewClient(cfg.API.BaseURL, interceptor, cfg.API.Timeout, log.With().Str("component", "api").Logger())
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	routes := service.DefaultRoutes()
	a.Session = service.NewSessionService(a.Store, transport.NewAuthGateway(client), routes, rec, log.With().Str("component", "session").Logger())
	guard := service.NewGuard(a.Session, routes, rec, log.With().Str("component", "guard").Logger())
	a.Navigator = service.NewNavigator(guard, routes)
	a.Session.AttachNavigator(a.Navigator)

	interceptor.OnRejected(func(ctx context.Context, req *http.Request) {
		a.Session.HandleAuthRejected(ctx)
	})

	a.Echo = api.NewRouter(api.Deps{
		Session:    a.Session,
		Navigator:  a.Navigator,
		TokenStore: backend,
		Upstream:   transport.NewProbe(client.BaseURL(), 3*time.Second),
		Log:        log.With().Str("component", "shell").Logger(),
		Registry:   opts.Registry,
	})
	return a, nil
}

// Close releases the token backend.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
