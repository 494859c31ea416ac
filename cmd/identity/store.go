package identity

import (
	"context"
	"time"
)

// Store persists user accounts.
//
// Requirements:
//   - Create enforces username and email uniqueness (ErrConflict).
//   - GetByUsername returns ErrNotFound for unknown accounts.
//   - TouchLastLogin is best-effort bookkeeping; it must not fail a login.
type Store interface {
	Create(ctx context.Context, in CreateUserInput) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	TouchLastLogin(ctx context.Context, id string, now time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
}
