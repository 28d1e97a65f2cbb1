// Package devserver is an in-memory stand-in for the marketplace REST API.
// It implements the authentication, profile and admin verification
// endpoints the client consumes, so the client can be run and tested
// end-to-end without the real backend.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// Options configures a Server.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Server wires the devserver routes.
type Server struct {
	echo     *echo.Echo
	auth     *AuthService
	accounts *AccountStore
	log      zerolog.Logger
}

func New(opts Options, log zerolog.Logger) *Server {
	accounts := NewAccountStore()
	auth := NewAuthService(accounts, opts.JWTSecret, opts.TokenTTL)
	s := &Server{echo: echo.New(), auth: auth, accounts: accounts, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	h := &handlers{auth: s.auth, accounts: s.accounts}
	authed := Auth(s.auth)

	api := e.Group("/api")
	api.GET("", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	api.HEAD("", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	auth := api.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.GET("/profile", h.profile, authed)
	auth.PUT("/profile", h.updateProfile, authed)

	customers := api.Group("/customers", authed, RBAC(domain.RoleCustomer))
	customers.GET("/profile", h.customerProfile)
	customers.PUT("/profile", h.updateCustomerProfile)

	professionals := api.Group("/professionals", authed, RBAC(domain.RoleProfessional))
	professionals.GET("/profile", h.professionalProfile)
	professionals.PUT("/profile", h.updateProfessionalProfile)

	admin := api.Group("/admin", authed, RBAC(domain.RoleAdmin))
	admin.GET("/professionals", h.listProfessionals)
	admin.POST("/professionals/:id/verify", h.verifyProfessional)
	admin.PUT("/users/:id/status", h.setUserStatus)
}

// Handler exposes the server for http.Server or httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

// SeedAdmin creates an admin account. Admins cannot self-register.
func (s *Server) SeedAdmin(ctx context.Context, email, password, name string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.accounts.Create(ctx, &Account{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Type:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Accounts exposes the store for seeding and inspection.
func (s *Server) Accounts() *AccountStore { return s.accounts }

// errorHandler answers {"message": ...} for API failures and
// {"error": ...} for transport-level rejections, as the real API does.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var f *Failure
	var he *echo.HTTPError
	switch {
	case errors.As(err, &f):
		_ = c.JSON(f.Status, map[string]any{"message": f.Message, "status": f.Status})
	case errors.As(err, &he):
		_ = c.JSON(he.Code, map[string]any{"error": he.Message})
	case errors.Is(err, ErrUserNotFound):
		_ = c.JSON(http.StatusNotFound, map[string]any{"message": "User not found", "status": http.StatusNotFound})
	default:
		s.log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, map[string]any{"message": "An unexpected error occurred"})
	}
}
