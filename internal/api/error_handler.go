package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// errorResponse is the canonical error envelope for all shell errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Forwards marketplace API messages verbatim with a status matching their kind.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return statusForKind(apiErr), apiErr.Message
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, err.Error()
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// statusForKind keeps the upstream 4xx code and maps the rest to gateway
// errors, since the shell itself did not fail.
func statusForKind(e *domain.APIError) int {
	switch {
	case errors.Is(e, domain.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(e, domain.ErrServerFault):
		return http.StatusBadGateway
	case errors.Is(e, domain.ErrInvalidRole):
		return http.StatusBadRequest
	case e.Status >= http.StatusBadRequest && e.Status < http.StatusInternalServerError:
		return e.Status
	case errors.Is(e, domain.ErrAuthenticationExpired):
		return http.StatusUnauthorized
	case errors.Is(e, domain.ErrAccountNotUsable):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
