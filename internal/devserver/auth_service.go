package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// Failure is an error with the status and message the API answers with.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string { return f.Message }

func fail(status int, msg string) *Failure { return &Failure{Status: status, Message: msg} }

var (
	errInvalidCredentials = fail(http.StatusUnauthorized, "Invalid email or password")
	errBlocked            = fail(http.StatusUnauthorized, "Account is blocked")
	errPending            = fail(http.StatusForbidden, "Your account is pending admin approval")
	errRejected           = fail(http.StatusForbidden, "Your registration has been rejected")
	errStatusInvalid      = fail(http.StatusForbidden, "Your account status is invalid")
	errDocumentsRequired  = fail(http.StatusBadRequest, "Documents required for professional registration")
	errEmailTaken         = fail(http.StatusBadRequest, "Email already registered")
)

var allowedDocumentExt = map[string]struct{}{".pdf": {}, ".jpg": {}, ".jpeg": {}, ".png": {}}

// PendingNotice is returned with every registration awaiting review.
const PendingNotice = "Please wait for admin approval"

// RegisterInput is a decoded registration request.
type RegisterInput struct {
	Email         string
	Password      string
	Name          string
	Phone         string
	Type          domain.Role
	Address       string
	Pincode       string
	ServiceType   string
	Experience    int
	Charges       float64
	IDProof       *Upload
	Certification *Upload
}

// Upload is a received file.
type Upload struct {
	Filename string
	Size     int
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	accounts  *AccountStore
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(accounts *AccountStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{accounts: accounts, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

// Register creates an account. Professionals start pending and receive no
// token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Account, string, error) {
	if in.Type == "" {
		in.Type = domain.RoleCustomer
	}
	if in.Type != domain.RoleCustomer && in.Type != domain.RoleProfessional {
		return nil, "", fail(http.StatusBadRequest, "Invalid user type")
	}
	if in.Type == domain.RoleProfessional {
		if in.IDProof == nil || in.Certification == nil {
			return nil, "", errDocumentsRequired
		}
		if !validDocument(in.IDProof.Filename) || !validDocument(in.Certification.Filename) {
			return nil, "", fail(http.StatusBadRequest, "Only PDF, JPG, JPEG, and PNG files are allowed")
		}
	}
	if err := validateRegistration(in); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := s.now().UTC()
	acc := &Account{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Phone:        in.Phone,
		Type:         in.Type,
		Status:       domain.StatusActive,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch in.Type {
	case domain.RoleCustomer:
		acc.Address, acc.Pincode = in.Address, in.Pincode
	case domain.RoleProfessional:
		acc.ServiceType, acc.Experience, acc.Charges = in.ServiceType, in.Experience, in.Charges
		acc.Status = domain.StatusPending
		acc.Available = true
		acc.Documents = []Document{newDocument("id_proof", in.IDProof), newDocument("certification", in.Certification)}
	}

	created, err := s.accounts.Create(ctx, acc)
	if errors.Is(err, ErrUserExists) {
		return nil, "", errEmailTaken
	}
	if err != nil {
		return nil, "", err
	}

	if created.Type == domain.RoleProfessional {
		created, err = s.accounts.Update(ctx, created.ID, func(a *Account) error {
			for i := range a.Documents {
				a.Documents[i].Path = fmt.Sprintf("uploads/%d/%s", a.ID, a.Documents[i].Filename)
			}
			return nil
		})
		return created, "", err
	}
	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login checks the password and the account standing.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *Account, error) {
	if email == "" || password == "" {
		return "", nil, fail(http.StatusBadRequest, "Email and password are required")
	}

	acc, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, errInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", nil, errInvalidCredentials
	}
	if err := usable(acc); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(acc)
	if err != nil {
		return "", nil, err
	}
	return token, acc, nil
}

// Verify resolves a token to a still-usable account.
func (s *AuthService) Verify(ctx context.Context, token string) (*Account, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, fail(http.StatusUnauthorized, "Token is invalid or expired")
	}
	sub, _ := claims.GetSubject()
	acc, err := s.accounts.FindByEmail(ctx, sub)
	if err != nil {
		return nil, fail(http.StatusUnauthorized, "Unauthorized access")
	}
	if !acc.Active {
		return nil, errBlocked
	}
	return acc, nil
}

func (s *AuthService) generateToken(acc *Account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  acc.Email,
		"role": string(acc.Type),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
		"jti":  uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func usable(acc *Account) error {
	if !acc.Active {
		return errBlocked
	}
	if acc.Type != domain.RoleProfessional {
		return nil
	}
	switch acc.Status {
	case domain.StatusApproved:
		return nil
	case domain.StatusPending:
		return errPending
	case domain.StatusRejected:
		return errRejected
	default:
		return errStatusInvalid
	}
}

func validateRegistration(in RegisterInput) error {
	var missing []string
	for name, v := range map[string]string{"email": in.Email, "password": in.Password, "name": in.Name, "phone": in.Phone} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	switch in.Type {
	case domain.RoleCustomer:
		if in.Address == "" {
			missing = append(missing, "address")
		}
		if in.Pincode == "" {
			missing = append(missing, "pincode")
		}
	case domain.RoleProfessional:
		if in.ServiceType == "" {
			missing = append(missing, "service_type")
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fail(http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
}

func validDocument(name string) bool {
	_, ok := allowedDocumentExt[strings.ToLower(path.Ext(name))]
	return ok
}

func newDocument(kind string, u *Upload) Document {
	id := uuid.New()
	return Document{
		ID:       id,
		Kind:     kind,
		Filename: fmt.Sprintf("%s_%s%s", kind, id.String()[:8], strings.ToLower(path.Ext(u.Filename))),
		Size:     u.Size,
	}
}
