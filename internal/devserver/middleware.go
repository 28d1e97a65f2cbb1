package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

const accountKey = "account"

// Auth validates the bearer token and injects the account into context.
func Auth(auth *AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized access")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			acc, err := auth.Verify(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}
			c.Set(accountKey, acc)

			return next(c)
		}
	}
}

// RBAC enforces the account type set by Auth.
func RBAC(allowed ...domain.Role) echo.MiddlewareFunc {
	set := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acc := currentAccount(c)
			if acc == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized access")
			}
			if _, ok := set[acc.Type]; !ok {
				return fail(http.StatusForbidden, fmt.Sprintf("%s access required", allowed[0]))
			}
			return next(c)
		}
	}
}

func currentAccount(c echo.Context) *Account {
	acc, _ := c.Get(accountKey).(*Account)
	return acc
}
