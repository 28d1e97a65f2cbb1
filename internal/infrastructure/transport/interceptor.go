package transport

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// RejectionHandler is notified after a response rejected the credential
// and the store has been cleared.
type RejectionHandler func(ctx context.Context, req *http.Request)

// Interceptor attaches the stored credential to every outbound request and
// clears it when the server answers 401. It knows nothing about navigation;
// subscribers decide what a rejection means for the user.
type Interceptor struct {
	base  http.RoundTripper
	store ports.CredentialStore
	log   zerolog.Logger

	mu       sync.RWMutex
	handlers []RejectionHandler
}

// NewInterceptor wraps base. A nil base uses http.DefaultTransport.
func NewInterceptor(base http.RoundTripper, store ports.CredentialStore, log zerolog.Logger) *Interceptor {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Interceptor{base: base, store: store, log: log}
}

// OnRejected subscribes h to authentication rejections.
func (i *Interceptor) OnRejected(h RejectionHandler) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.handlers = append(i.handlers, h)
}

// RoundTrip satisfies http.RoundTripper. The caller's request is never
// modified; a clone carries the credential.
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if token, ok := i.store.Token(); ok {
		out.Header.Set(headerAuthorization, "Bearer "+token)
	} else {
		out.Header.Del(headerAuthorization)
	}
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.NewString())
	}

	resp, err := i.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		i.reject(out)
	}
	return resp, nil
}

// reject runs once per rejected response. Clear is idempotent, so
// concurrent rejections of the same token are harmless.
func (i *Interceptor) reject(req *http.Request) {
	ctx := context.WithoutCancel(req.Context())

	if err := i.store.Clear(ctx); err != nil {
		i.log.Error().Err(err).Msg("failed to clear rejected credential")
	}
	i.log.Info().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(headerRequestID)).
		Msg("authentication rejected by server")

	i.mu.RLock()
	handlers := append([]RejectionHandler(nil), i.handlers...)
	i.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, req)
	}
}
