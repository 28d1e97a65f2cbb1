package ports

import "context"

// TokenBackend is durable storage for the bearer token under a single key.
// Load returns ok=false when no token is stored.
type TokenBackend interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
	Ping(ctx context.Context) error
}
