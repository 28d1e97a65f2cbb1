package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/api/handler"
	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// Deps are the collaborators of the web shell.
type Deps struct {
	Session   ports.SessionController
	Navigator handler.ViewNavigator
	// TokenStore and Upstream back the readiness probe; either may be nil.
	TokenStore handler.Pinger
	Upstream   handler.Pinger
	Log        zerolog.Logger
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig(d.Registry)))

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(d.Session, d.Navigator)
	s := e.Group("/session")
	s.GET("", sessionHandler.Status)
	s.POST("/login", sessionHandler.Login)
	s.POST("/register", sessionHandler.Register)
	s.POST("/logout", sessionHandler.Logout)
	s.PUT("/profile", sessionHandler.UpdateProfile)

	// --- Views (every request is a guarded navigation) ---
	viewHandler := handler.NewViewHandler(d.Navigator, d.Session)
	e.GET(handler.ViewPrefix, viewHandler.Show)
	e.GET(handler.ViewPrefix+"/*", viewHandler.Show)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.TokenStore, d.Upstream)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", promHandler(d.Registry))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func promConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "marketplace_client"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func promHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
