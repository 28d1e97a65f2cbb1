package domain

// Phase is the explicit state of the session controller.
type Phase string

const (
	PhaseLoggedOut     Phase = "logged_out"
	PhaseLoggingIn     Phase = "logging_in"
	PhaseLoggedIn      Phase = "logged_in"
	PhaseBootstrapping Phase = "bootstrapping"
)

// SessionKind classifies the derived session state.
type SessionKind string

const (
	SessionUnauthenticated SessionKind = "unauthenticated"
	SessionBootstrapping   SessionKind = "bootstrapping"
	SessionAuthenticated   SessionKind = "authenticated"
	SessionInvalid         SessionKind = "invalid"
)

// SessionState is a pure function of the credential, the user record and
// whether the server has rejected the credential.
type SessionState struct {
	Kind SessionKind
	Role Role
}

// DeriveSession computes the session state. A rejected credential that is
// still held reads as Invalid until the store is cleared.
func DeriveSession(hasToken bool, user *User, rejected bool) SessionState {
	switch {
	case !hasToken:
		return SessionState{Kind: SessionUnauthenticated}
	case rejected:
		return SessionState{Kind: SessionInvalid}
	case user == nil:
		return SessionState{Kind: SessionBootstrapping}
	default:
		return SessionState{Kind: SessionAuthenticated, Role: user.Type}
	}
}

func (s SessionState) Authenticated() bool { return s.Kind == SessionAuthenticated }

// Registration is the input of a sign-up. IDProof and Certification are
// optional attachments; their presence switches the request to multipart.
type Registration struct {
	Email         string      `json:"email" form:"email" validate:"required,email"`
	Password      string      `json:"password" form:"password" validate:"required,min=6"`
	Name          string      `json:"name" form:"name" validate:"required"`
	Phone         string      `json:"phone" form:"phone" validate:"required"`
	Type          Role        `json:"type" form:"type" validate:"required,oneof=customer professional"`
	Address       string      `json:"address,omitempty" form:"address"`
	Pincode       string      `json:"pincode,omitempty" form:"pincode"`
	ServiceType   string      `json:"service_type,omitempty" form:"service_type"`
	Experience    int         `json:"experience,omitempty" form:"experience" validate:"gte=0"`
	Charges       float64     `json:"charges,omitempty" form:"charges" validate:"gte=0"`
	IDProof       *Attachment `json:"-" form:"-"`
	Certification *Attachment `json:"-" form:"-"`
}

// HasAttachments reports whether the registration must be sent as multipart.
func (r Registration) HasAttachments() bool {
	return r.IDProof != nil || r.Certification != nil
}

// Attachment is an uploaded document.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AuthResponse is the body of POST /auth/login and POST /auth/register.
type AuthResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	User        *User  `json:"user"`
	Message     string `json:"message,omitempty"`
}

// RegistrationResult reports the outcome of a sign-up.
type RegistrationResult struct {
	User *User
	// LoggedIn is true when the returned credential was kept.
	LoggedIn bool
	// Notice is the server's informational message, e.g. the pending
	// approval notice for professionals.
	Notice string
	// Landing is where the caller should go next.
	Landing Destination
}

// ProfileUpdate carries editable profile fields. Base fields go to
// /auth/profile, the rest to the role endpoint.
type ProfileUpdate struct {
	Name        string   `json:"name" form:"name" validate:"required"`
	Phone       string   `json:"phone" form:"phone" validate:"required"`
	Address     string   `json:"address,omitempty" form:"address"`
	Pincode     string   `json:"pincode,omitempty" form:"pincode"`
	ServiceType string   `json:"service_type,omitempty" form:"service_type"`
	Experience  string   `json:"experience,omitempty" form:"experience"`
	Charges     *float64 `json:"charges,omitempty" form:"charges"`
	Available   *bool    `json:"available,omitempty" form:"available"`
}
