package devserver

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Document is an uploaded registration document.
type Document struct {
	ID       uuid.UUID
	Kind     string
	Filename string
	Size     int
	Path     string
}

// Account is a marketplace user as the server stores it.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Type         domain.Role
	Status       domain.Status
	Active       bool

	Address string
	Pincode string

	ServiceType string
	Experience  int
	Charges     float64
	Available   bool
	Documents   []Document

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) clone() *Account {
	c := *a
	c.Documents = append([]Document(nil), a.Documents...)
	return &c
}

// AccountStore keeps accounts in memory, keyed by email.
type AccountStore struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]*Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{byEmail: make(map[string]*Account)}
}

func (s *AccountStore) Create(_ context.Context, a *Account) (*Account, error) {
	key := strings.ToLower(a.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[key]; exists {
		return nil, ErrUserExists
	}
	s.nextID++
	stored := a.clone()
	stored.ID = s.nextID
	s.byEmail[key] = stored
	return stored.clone(), nil
}

func (s *AccountStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return a.clone(), nil
}

func (s *AccountStore) FindByID(_ context.Context, id int64) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.byEmail {
		if a.ID == id {
			return a.clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

// Update applies fn to the stored account under the write lock.
func (s *AccountStore) Update(_ context.Context, id int64, fn func(*Account) error) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byEmail {
		if a.ID != id {
			continue
		}
		next := a.clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.UpdatedAt = time.Now().UTC()
		*a = *next
		return next.clone(), nil
	}
	return nil, ErrUserNotFound
}

// List returns accounts of the given type, or all when role is empty,
// ordered by id.
func (s *AccountStore) List(_ context.Context, role domain.Role) []*Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Account, 0, len(s.byEmail))
	for _, a := range s.byEmail {
		if role == "" || a.Type == role {
			out = append(out, a.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
