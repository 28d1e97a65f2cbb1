package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

type handlers struct {
	auth     *AuthService
	accounts *AccountStore
}

// userJSON is the user object of every auth response. Experience is a
// number on the wire.
type userJSON struct {
	ID                int64         `json:"id"`
	Email             string        `json:"email"`
	Name              string        `json:"name"`
	Phone             string        `json:"phone"`
	Type              domain.Role   `json:"type"`
	Status            domain.Status `json:"status,omitempty"`
	ServiceType       string        `json:"service_type,omitempty"`
	Experience        *int          `json:"experience,omitempty"`
	IDProofPath       string        `json:"id_proof_path,omitempty"`
	CertificationPath string        `json:"certification_path,omitempty"`
}

func toUserJSON(a *Account) userJSON {
	u := userJSON{ID: a.ID, Email: a.Email, Name: a.Name, Phone: a.Phone, Type: a.Type}
	if a.Type == domain.RoleProfessional {
		exp := a.Experience
		u.Status = a.Status
		u.ServiceType = a.ServiceType
		u.Experience = &exp
		for _, d := range a.Documents {
			switch d.Kind {
			case "id_proof":
				u.IDProofPath = d.Path
			case "certification":
				u.CertificationPath = d.Path
			}
		}
	}
	return u
}

type authResponse struct {
	User        userJSON `json:"user"`
	AccessToken string   `json:"access_token,omitempty"`
	Message     string   `json:"message,omitempty"`
}

func newAuthResponse(a *Account, token string) authResponse {
	resp := authResponse{User: toUserJSON(a), AccessToken: token}
	if a.Type == domain.RoleProfessional && a.Status == domain.StatusPending {
		resp.Message = PendingNotice
	}
	return resp
}

// registerBody accepts numbers or strings for the numeric fields.
type registerBody struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Type        string      `json:"type"`
	Address     string      `json:"address"`
	Pincode     domain.Text `json:"pincode"`
	ServiceType string      `json:"service_type"`
	Experience  domain.Text `json:"experience"`
	Charges     domain.Text `json:"charges"`
}

// register creates a customer or professional account. Professionals stay
// pending until an admin approves them.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body      registerBody  true  "Account details; multipart adds id_proof and certification files"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /auth/register [post]
func (h *handlers) register(c echo.Context) error {
	var body registerBody
	in := RegisterInput{}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		body = registerBody{
			Email: c.FormValue("email"), Password: c.FormValue("password"),
			Name: c.FormValue("name"), Phone: c.FormValue("phone"), Type: c.FormValue("type"),
			Address: c.FormValue("address"), Pincode: domain.Text(c.FormValue("pincode")),
			ServiceType: c.FormValue("service_type"),
			Experience:  domain.Text(c.FormValue("experience")), Charges: domain.Text(c.FormValue("charges")),
		}
		in.IDProof = formUpload(c, "id_proof")
		in.Certification = formUpload(c, "certification")
	} else if err := c.Bind(&body); err != nil {
		return fail(http.StatusBadRequest, "Invalid request body")
	}

	in.Email, in.Password, in.Name, in.Phone = body.Email, body.Password, body.Name, body.Phone
	in.Type = domain.Role(strings.ToLower(body.Type))
	in.Address, in.Pincode, in.ServiceType = body.Address, string(body.Pincode), body.ServiceType
	if body.Experience != "" {
		n, err := strconv.Atoi(string(body.Experience))
		if err != nil || n < 0 {
			return fail(http.StatusBadRequest, "Experience must be a non-negative whole number")
		}
		in.Experience = n
	}
	if body.Charges != "" {
		f, err := strconv.ParseFloat(string(body.Charges), 64)
		if err != nil || f < 0 {
			return fail(http.StatusBadRequest, "Charges must be a non-negative number")
		}
		in.Charges = f
	}

	acc, token, err := h.auth.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newAuthResponse(acc, token))
}

func formUpload(c echo.Context, field string) *Upload {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return &Upload{Filename: fh.Filename, Size: int(fh.Size)}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login exchanges credentials for a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginBody  true  "Email and password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /auth/login [post]
func (h *handlers) login(c echo.Context) error {
	var body loginBody
	if err := c.Bind(&body); err != nil {
		return fail(http.StatusBadRequest, "Invalid request body")
	}
	token, acc, err := h.auth.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthResponse(acc, token))
}

// profile returns the authenticated account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /auth/profile [get]
func (h *handlers) profile(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"user": toUserJSON(currentAccount(c))})
}

type baseProfileBody struct {
	Name        *string     `json:"name"`
	Phone       *string     `json:"phone"`
	ServiceType *string     `json:"service_type"`
	Experience  domain.Text `json:"experience"`
}

// updateProfile writes the base profile fields.
//
// @Summary      Update base profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      baseProfileBody  true  "Fields to change"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /auth/profile [put]
func (h *handlers) updateProfile(c echo.Context) error {
	var body baseProfileBody
	if err := c.Bind(&body); err != nil {
		return fail(http.StatusBadRequest, "Invalid request body")
	}
	acc, err := h.accounts.Update(c.Request().Context(), currentAccount(c).ID, func(a *Account) error {
		if body.Name != nil {
			a.Name = *body.Name
		}
		if body.Phone != nil {
			a.Phone = *body.Phone
		}
		if a.Type != domain.RoleProfessional {
			return nil
		}
		if body.ServiceType != nil {
			a.ServiceType = *body.ServiceType
		}
		return applyExperience(a, body.Experience)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toUserJSON(acc)})
}

// customerProfile returns the customer extension.
//
// @Summary      Customer profile
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /customers/profile [get]
func (h *handlers) customerProfile(c echo.Context) error {
	acc := currentAccount(c)
	return c.JSON(http.StatusOK, map[string]any{
		"user":    toUserJSON(acc),
		"address": acc.Address,
		"pincode": acc.Pincode,
	})
}

type customerProfileBody struct {
	Address *string     `json:"address"`
	Pincode domain.Text `json:"pincode"`
}

// updateCustomerProfile writes address and pincode.
//
// @Summary      Update customer profile
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      customerProfileBody  true  "Fields to change"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /customers/profile [put]
func (h *handlers) updateCustomerProfile(c echo.Context) error {
	var body customerProfileBody
	if err := c.Bind(&body); err != nil {
		return fail(http.StatusBadRequest, "Invalid request body")
	}
	acc, err := h.accounts.Update(c.Request().Context(), currentAccount(c).ID, func(a *Account) error {
		if body.Address != nil {
			a.Address = *body.Address
		}
		if body.Pincode != "" {
			a.Pincode = string(body.Pincode)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toUserJSON(acc)})
}

// professionalProfile returns the professional extension.
//
// @Summary      Professional profile
// @Tags         professionals
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /professionals/profile [get]
func (h *handlers) professionalProfile(c echo.Context) error {
	acc := currentAccount(c)
	return c.JSON(http.StatusOK, map[string]any{
		"user":         toUserJSON(acc),
		"service_type": acc.ServiceType,
		"experience":   acc.Experience,
		"charges":      acc.Charges,
		"available":    acc.Available,
	})
}

type professionalProfileBody struct {
	ServiceType *string     `json:"service_type"`
	Experience  domain.Text `json:"experience"`
	Charges     *float64    `json:"charges"`
	Available   *bool       `json:"available"`
}

// updateProfessionalProfile is open to approved professionals only.
//
// @Summary      Update professional profile
// @Tags         professionals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      professionalProfileBody  true  "Fields to change"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /professionals/profile [put]
func (h *handlers) updateProfessionalProfile(c echo.Context) error {
	if currentAccount(c).Status != domain.StatusApproved {
		return fail(http.StatusForbidden, "Professional account is not verified")
	}
	var body professionalProfileBody
	if err := c.Bind(&body); err != nil {
		return fail(http.StatusBadRequest, "Invalid request body")
	}
	acc, err := h.accounts.Update(c.Request().Context(), currentAccount(c).ID, func(a *Account) error {
		if body.ServiceType != nil {
			a.ServiceType = *body.ServiceType
		}
		if body.Charges != nil {
			if *body.Charges < 0 {
				return fail(http.StatusBadRequest, "Charges must be a non-negative number")
			}
			a.Charges = *body.Charges
		}
		if body.Available != nil {
			a.Available = *body.Available
		}
		return applyExperience(a, body.Experience)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toUserJSON(acc)})
}

func applyExperience(a *Account, v domain.Text) error {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(string(v))
	if err != nil || n < 0 {
		return fail(http.StatusBadRequest, "Experience must be a non-negative whole number")
	}
	a.Experience = n
	return nil
}

type statusBody struct {
	Active *bool `json:"active"`
}

// setUserStatus blocks or unblocks an account.
//
// @Summary      Block or unblock a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "User ID"
// @Param        body  body      statusBody  true  "Desired active flag"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /admin/users/{id}/status [put]
func (h *handlers) setUserStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(http.StatusNotFound, "User not found")
	}
	var body statusBody
	if err := c.Bind(&body); err != nil || body.Active == nil {
		return fail(http.StatusBadRequest, "Active status is required")
	}
	acc, err := h.accounts.Update(c.Request().Context(), id, func(a *Account) error {
		a.Active = *body.Active
		return nil
	})
	if err != nil {
		return err
	}
	verb := "blocked"
	if acc.Active {
		verb = "unblocked"
	}
	return c.JSON(http.StatusOK, map[string]any{"active": acc.Active, "message": "User " + verb + " successfully"})
}

type verifyBody struct {
	Approved *bool  `json:"approved"`
	Comment  string `json:"comment"`
}

// verifyProfessional approves or rejects a pending professional.
//
// @Summary      Verify a professional
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Professional ID"
// @Param        body  body      verifyBody  true  "Approval decision"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /admin/professionals/{id}/verify [post]
func (h *handlers) verifyProfessional(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(http.StatusNotFound, "Professional not found")
	}
	var body verifyBody
	if err := c.Bind(&body); err != nil {
		return fail(http.StatusBadRequest, "Invalid request body")
	}
	approved := body.Approved == nil || *body.Approved

	_, err = h.accounts.Update(c.Request().Context(), id, func(a *Account) error {
		if a.Type != domain.RoleProfessional {
			return fail(http.StatusNotFound, "Professional not found")
		}
		a.Status = domain.StatusRejected
		if approved {
			a.Status = domain.StatusApproved
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Professional verification status updated"})
}

// listProfessionals lists professionals, optionally by status.
//
// @Summary      List professionals
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /admin/professionals [get]
func (h *handlers) listProfessionals(c echo.Context) error {
	status := domain.Status(c.QueryParam("status"))
	out := make([]userJSON, 0)
	for _, a := range h.accounts.List(c.Request().Context(), domain.RoleProfessional) {
		if status == "" || a.Status == status {
			out = append(out, toUserJSON(a))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"professionals": out})
}
