package ports

import (
	"context"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// AuthGateway is the marketplace HTTP boundary used by the session
// controller. Every error it returns is a *domain.APIError.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResponse, error)
	Profile(ctx context.Context) (*domain.User, error)
	RoleProfile(ctx context.Context, role domain.Role) (*domain.ProfileExtension, error)
	UpdateBaseProfile(ctx context.Context, update domain.ProfileUpdate) error
	UpdateRoleProfile(ctx context.Context, role domain.Role, update domain.ProfileUpdate) error
}
