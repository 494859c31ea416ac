package identity

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a dev/test fallback when DB is not configured.
type InMemoryStore struct {
	mu      sync.Mutex
	byID    map[string]User
	byName  map[string]string // username -> id
	byEmail map[string]string // email -> id
}

// NewInMemoryStore constructs an empty in-memory user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]User),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

// Create inserts a new user, enforcing username/email uniqueness.
func (s *InMemoryStore) Create(ctx context.Context, in CreateUserInput) (User, error) {
	if err := in.validate(); err != nil {
		return User{}, err
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewUserID(now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[in.Username]; exists {
		return User{}, ErrConflict
	}
	if _, exists := s.byEmail[in.Email]; exists {
		return User{}, ErrConflict
	}

	u := User{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		APIKey:       in.APIKey,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[id] = u
	s.byName[in.Username] = id
	s.byEmail[in.Email] = id

	return u, nil
}

// GetByID loads a user by id.
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GetByUsername loads a user by username.
func (s *InMemoryStore) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.byID[id], nil
}

// SetActive enables or disables an account.
func (s *InMemoryStore) SetActive(ctx context.Context, id string, active bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return nil
}

// TouchLastLogin records a successful login instant.
func (s *InMemoryStore) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	t := now.UTC()
	u.LastLogin = &t
	u.UpdatedAt = t
	s.byID[id] = u
	return nil
}
