package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// ViewPrefix is where application views are mounted on the shell.
const ViewPrefix = "/views"

type ViewHandler struct {
	nav     ViewNavigator
	session ports.SessionController
}

func NewViewHandler(nav ViewNavigator, session ports.SessionController) *ViewHandler {
	return &ViewHandler{nav: nav, session: session}
}

type viewResponse struct {
	Name    string             `json:"view"`
	Path    string             `json:"path"`
	Session domain.SessionKind `json:"session"`
	User    *domain.User       `json:"user,omitempty"`
}

// Show navigates to the requested view. Guard redirects become 302s to the
// shell URL of the redirect target.
func (h *ViewHandler) Show(c echo.Context) error {
	target := "/" + strings.TrimPrefix(c.Param("*"), "/")
	if q := c.QueryString(); q != "" {
		target += "?" + q
	}

	nav, err := h.nav.Navigate(c.Request().Context(), target)
	if err != nil {
		return err
	}
	switch {
	case nav.Superseded():
		return c.JSON(http.StatusConflict, map[string]string{"error": "navigation superseded"})
	case nav.Redirected():
		return c.Redirect(http.StatusFound, viewURL(nav.Final))
	case !nav.Known:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "view not found"})
	}

	return c.JSON(http.StatusOK, viewResponse{
		Name:    nav.Final.Name,
		Path:    nav.Final.FullPath(),
		Session: h.session.State().Kind,
		User:    h.session.CurrentUser(),
	})
}

func viewURL(d domain.Destination) string {
	return ViewPrefix + d.FullPath()
}
