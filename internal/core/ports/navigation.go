package ports

import (
	"context"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// Session is the read side of the session controller consulted by the
// guard pipeline, plus the one suspending call it may make.
type Session interface {
	State() domain.SessionState
	Bootstrap(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Navigator owns the current location.
type Navigator interface {
	Current() domain.Destination
	Replace(dest domain.Destination)
}
