package ports

import "context"

// CredentialStore is the only holder of "am I logged in" truth.
type CredentialStore interface {
	// Token returns the current token without I/O.
	Token() (string, bool)
	SetToken(ctx context.Context, token string) error
	// Clear is idempotent.
	Clear(ctx context.Context) error
}
