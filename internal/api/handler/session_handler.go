package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/ports"
	"github.com/servicehub/marketplace-client/internal/core/service"
)

// maxDocumentBytes bounds a single uploaded registration document.
const maxDocumentBytes = 10 << 20

// ViewNavigator runs a navigation through the guard pipeline.
type ViewNavigator interface {
	Navigate(ctx context.Context, fullPath string) (service.Navigation, error)
}

type SessionHandler struct {
	session ports.SessionController
	nav     ViewNavigator
}

func NewSessionHandler(session ports.SessionController, nav ViewNavigator) *SessionHandler {
	return &SessionHandler{session: session, nav: nav}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	Email       string  `json:"email" form:"email" validate:"required,email"`
	Password    string  `json:"password" form:"password" validate:"required,min=6"`
	Name        string  `json:"name" form:"name" validate:"required"`
	Phone       string  `json:"phone" form:"phone" validate:"required"`
	Type        string  `json:"type" form:"type" validate:"required,oneof=customer professional"`
	Address     string  `json:"address" form:"address" validate:"required_if=Type customer"`
	Pincode     string  `json:"pincode" form:"pincode" validate:"required_if=Type customer"`
	ServiceType string  `json:"service_type" form:"service_type" validate:"required_if=Type professional"`
	Experience  int     `json:"experience" form:"experience" validate:"gte=0"`
	Charges     float64 `json:"charges" form:"charges" validate:"gte=0"`
}

type profileRequest struct {
	Name        string   `json:"name" validate:"required"`
	Phone       string   `json:"phone" validate:"required"`
	Address     string   `json:"address"`
	Pincode     string   `json:"pincode"`
	ServiceType string   `json:"service_type"`
	Experience  string   `json:"experience"`
	Charges     *float64 `json:"charges" validate:"omitempty,gte=0"`
	Available   *bool    `json:"available"`
}

type sessionResponse struct {
	State    domain.SessionKind `json:"state"`
	Role     domain.Role        `json:"role,omitempty"`
	User     *domain.User       `json:"user,omitempty"`
	Error    string             `json:"error,omitempty"`
	Redirect string             `json:"redirect,omitempty"`
}

type registerResponse struct {
	User     *domain.User `json:"user,omitempty"`
	LoggedIn bool         `json:"logged_in"`
	Notice   string       `json:"notice,omitempty"`
	Redirect string       `json:"redirect"`
}

// Status reports the derived session state.
func (h *SessionHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot(""))
}

// Login authenticates and moves to the role landing.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	landing, err := h.session.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	redirect, err := h.follow(ctx, landing)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.snapshot(redirect))
}

// Register signs up a customer or professional. Multipart bodies may carry
// id_proof and certification documents.
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reg := domain.Registration{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Phone:       req.Phone,
		Type:        domain.Role(req.Type),
		Address:     req.Address,
		Pincode:     req.Pincode,
		ServiceType: req.ServiceType,
		Experience:  req.Experience,
		Charges:     req.Charges,
	}
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var err error
		if reg.IDProof, err = formAttachment(c, "id_proof"); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if reg.Certification, err = formAttachment(c, "certification"); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	ctx := c.Request().Context()
	result, err := h.session.Register(ctx, reg)
	if err != nil {
		return err
	}
	redirect, err := h.follow(ctx, result.Landing)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{
		User:     result.User,
		LoggedIn: result.LoggedIn,
		Notice:   result.Notice,
		Redirect: redirect,
	})
}

// Logout clears the session locally and moves to login. When the stored
// credential could not be removed the body still carries the login redirect
// but the status is 500 and the state reads invalid.
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	dest, clearErr := h.session.Logout(ctx)
	redirect, err := h.follow(ctx, dest)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if clearErr != nil {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, h.snapshot(redirect))
}

// UpdateProfile writes base and role fields and returns the refreshed user.
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.session.UpdateProfile(c.Request().Context(), domain.ProfileUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		Pincode:     req.Pincode,
		ServiceType: req.ServiceType,
		Experience:  req.Experience,
		Charges:     req.Charges,
		Available:   req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// follow navigates to dest and returns the shell URL of where it ended.
func (h *SessionHandler) follow(ctx context.Context, dest domain.Destination) (string, error) {
	nav, err := h.nav.Navigate(ctx, dest.FullPath())
	if err != nil {
		return "", err
	}
	return viewURL(nav.Final), nil
}

func (h *SessionHandler) snapshot(redirect string) sessionResponse {
	state := h.session.State()
	return sessionResponse{
		State:    state.Kind,
		Role:     state.Role,
		User:     h.session.CurrentUser(),
		Error:    h.session.LastError(),
		Redirect: redirect,
	}
}

func formAttachment(c echo.Context, field string) (*domain.Attachment, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	if fh.Size > maxDocumentBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", field, maxDocumentBytes)
	}
	data, err := readPart(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &domain.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxDocumentBytes))
}
