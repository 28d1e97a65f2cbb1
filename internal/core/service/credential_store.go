package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// CredentialStore keeps the bearer token in memory mirrored to a durable
// backend. Writers hold the lock across the backend write and the memory
// update, so readers never see the two disagree.
type CredentialStore struct {
	mu      sync.RWMutex
	backend ports.TokenBackend
	token   string
	present bool
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

func NewCredentialStore(backend ports.TokenBackend) *CredentialStore {
	return &CredentialStore{backend: backend}
}

// Restore loads a previously persisted token into memory.
func (s *CredentialStore) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore token: %w", err)
	}
	if !ok {
		token = ""
	}
	s.token, s.present = token, token != ""
	return nil
}

func (s *CredentialStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present
}

// SetToken persists token then updates memory. An empty token clears.
func (s *CredentialStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Save(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.token, s.present = token, true
	return nil
}

// Clear removes the token from the backend and memory. If the backend
// delete fails the in-memory token is kept so both stay equal.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	s.token, s.present = "", false
	return nil
}
