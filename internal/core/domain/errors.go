package domain

import (
	"errors"
	"net/http"
)

// Failure taxonomy. Only the transport boundary classifies responses into
// these kinds; the session layer forwards the message verbatim.
var (
	ErrValidationRejected    = errors.New("validation rejected")
	ErrAccountNotUsable      = errors.New("account not usable")
	ErrAuthenticationExpired = errors.New("authentication expired")
	ErrNetworkUnavailable    = errors.New("network unavailable")
	ErrServerFault           = errors.New("server fault")
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidRole      = errors.New("invalid role")
)

// DefaultErrorMessage is used when neither the server nor the transport
// supplies any text.
const DefaultErrorMessage = "An error occurred"

// NoResponseMessage is used when a request produced no response and the
// transport error has no text of its own.
const NoResponseMessage = "Server not responding. Please try again later."

// CredentialNotRemovedMessage is reported when logout could not delete the
// stored credential.
const CredentialNotRemovedMessage = "Logged out, but the saved credential could not be removed"

// APIError is the single normalized failure shape produced at the transport
// boundary.
type APIError struct {
	Message string
	Kind    error
	Status  int
	// Response is the original response, nil when none was received. Its
	// body has already been consumed; RawBody holds the bytes.
	Response *http.Response
	RawBody  []byte
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Kind }

// Message returns the user-visible text of err: the normalized message for
// an APIError, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// KindForStatus maps an HTTP status to a failure kind. Zero means no
// response was received.
func KindForStatus(status int) error {
	switch {
	case status == 0:
		return ErrNetworkUnavailable
	case status == http.StatusUnauthorized:
		return ErrAuthenticationExpired
	case status == http.StatusForbidden:
		return ErrAccountNotUsable
	case status >= 500:
		return ErrServerFault
	default:
		return ErrValidationRejected
	}
}
