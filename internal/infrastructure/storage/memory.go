package storage

import (
	"context"
	"sync"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// MemoryBackend keeps the token for the lifetime of the process only.
type MemoryBackend struct {
	mu      sync.Mutex
	token   string
	present bool
}

var _ ports.TokenBackend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.present, nil
}

func (m *MemoryBackend) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.present = token, true
	return nil
}

func (m *MemoryBackend) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.present = "", false
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }
