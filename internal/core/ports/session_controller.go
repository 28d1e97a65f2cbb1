package ports

import (
	"context"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// SessionController is the write side of the session used by the web shell.
type SessionController interface {
	Login(ctx context.Context, email, password string) (domain.Destination, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.RegistrationResult, error)
	Logout(ctx context.Context) (domain.Destination, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)

	State() domain.SessionState
	CurrentUser() *domain.User
	LastError() string
}
