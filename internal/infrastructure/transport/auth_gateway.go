package transport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// Marketplace endpoints consumed by the session core.
const (
	pathLogin               = "/auth/login"
	pathRegister            = "/auth/register"
	pathProfile             = "/auth/profile"
	pathCustomerProfile     = "/customers/profile"
	pathProfessionalProfile = "/professionals/profile"
)

// AuthGateway implements ports.AuthGateway over the REST client.
type AuthGateway struct {
	client *Client
}

var _ ports.AuthGateway = (*AuthGateway)(nil)

func NewAuthGateway(client *Client) *AuthGateway {
	return &AuthGateway{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (g *AuthGateway) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := g.client.JSON(ctx, http.MethodPost, pathLogin, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register sends multipart when documents are attached and JSON otherwise.
// Numeric fields travel as text in both encodings.
func (g *AuthGateway) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResponse, error) {
	fields := RegistrationFields(reg)

	var resp domain.AuthResponse
	var err error
	if reg.HasAttachments() {
		files := []FilePart{
			{Field: "id_proof", Attachment: reg.IDProof},
			{Field: "certification", Attachment: reg.Certification},
		}
		err = g.client.Multipart(ctx, http.MethodPost, pathRegister, fields, files, &resp)
	} else {
		body := make(map[string]string, len(fields))
		for _, f := range fields {
			body[f.Name] = f.Value
		}
		err = g.client.JSON(ctx, http.MethodPost, pathRegister, body, &resp)
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegistrationFields lists the text fields of a registration in a stable
// order, with numbers rendered as text and empty optional fields omitted.
func RegistrationFields(reg domain.Registration) []Field {
	fields := []Field{
		{Name: "email", Value: reg.Email},
		{Name: "password", Value: reg.Password},
		{Name: "name", Value: reg.Name},
		{Name: "phone", Value: reg.Phone},
		{Name: "type", Value: string(reg.Type)},
	}
	optional := []Field{
		{Name: "address", Value: reg.Address},
		{Name: "pincode", Value: reg.Pincode},
		{Name: "service_type", Value: reg.ServiceType},
	}
	for _, f := range optional {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	if reg.Type == domain.RoleProfessional || reg.Experience > 0 {
		fields = append(fields, Field{Name: "experience", Value: strconv.Itoa(reg.Experience)})
	}
	if reg.Charges > 0 {
		fields = append(fields, Field{Name: "charges", Value: strconv.FormatFloat(reg.Charges, 'f', -1, 64)})
	}
	return fields
}

type profileResponse struct {
	User *domain.User `json:"user"`
}

func (g *AuthGateway) Profile(ctx context.Context) (*domain.User, error) {
	var resp profileResponse
	if err := g.client.JSON(ctx, http.MethodGet, pathProfile, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &domain.APIError{Message: "Invalid response from server", Kind: domain.ErrServerFault}
	}
	return resp.User, nil
}

// extensionResponse tolerates numbers or strings in the role fields.
type extensionResponse struct {
	User        *domain.User `json:"user"`
	Address     string       `json:"address"`
	Pincode     domain.Text  `json:"pincode"`
	ServiceType string       `json:"service_type"`
	Experience  domain.Text  `json:"experience"`
	Charges     domain.Text  `json:"charges"`
	Available   *bool        `json:"available"`
}

func (g *AuthGateway) RoleProfile(ctx context.Context, role domain.Role) (*domain.ProfileExtension, error) {
	path, err := roleProfilePath(role)
	if err != nil {
		return nil, err
	}

	var resp extensionResponse
	if err := g.client.JSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	charges, _ := strconv.ParseFloat(string(resp.Charges), 64)
	return &domain.ProfileExtension{
		User:        resp.User,
		Address:     resp.Address,
		Pincode:     string(resp.Pincode),
		ServiceType: resp.ServiceType,
		Experience:  string(resp.Experience),
		Charges:     charges,
		Available:   resp.Available,
	}, nil
}

type baseProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (g *AuthGateway) UpdateBaseProfile(ctx context.Context, update domain.ProfileUpdate) error {
	return g.client.JSON(ctx, http.MethodPut, pathProfile, baseProfileRequest{Name: update.Name, Phone: update.Phone}, nil)
}

type customerProfileRequest struct {
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

type professionalProfileRequest struct {
	Experience  string   `json:"experience,omitempty"`
	ServiceType string   `json:"service_type,omitempty"`
	Charges     *float64 `json:"charges,omitempty"`
	Available   *bool    `json:"available,omitempty"`
}

func (g *AuthGateway) UpdateRoleProfile(ctx context.Context, role domain.Role, update domain.ProfileUpdate) error {
	path, err := roleProfilePath(role)
	if err != nil {
		return err
	}

	var body any
	if role == domain.RoleCustomer {
		body = customerProfileRequest{Address: update.Address, Pincode: update.Pincode}
	} else {
		body = professionalProfileRequest{
			Experience:  update.Experience,
			ServiceType: update.ServiceType,
			Charges:     update.Charges,
			Available:   update.Available,
		}
	}
	return g.client.JSON(ctx, http.MethodPut, path, body, nil)
}

func roleProfilePath(role domain.Role) (string, error) {
	switch role {
	case domain.RoleCustomer:
		return pathCustomerProfile, nil
	case domain.RoleProfessional:
		return pathProfessionalProfile, nil
	default:
		return "", &domain.APIError{Message: "no role profile for " + string(role), Kind: domain.ErrInvalidRole}
	}
}
