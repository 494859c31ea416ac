package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (raven.users).
//
// Ownership model: the store does NOT own the pgx pool; the caller closes it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed user store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// Create inserts a new user row. Username/email collisions map to ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, in CreateUserInput) (User, error) {
	if err := in.validate(); err != nil {
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

	_, err = s.pool.Exec(ctx, `
		INSERT INTO raven.users (
			id, username, email, password_hash, api_key,
			is_active, last_login, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, TRUE, NULL, $6, $6)
	`, id, in.Username, in.Email, in.PasswordHash, in.APIKey, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return User{}, ErrConflict
		}
		return User{}, err
	}

	return User{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		APIKey:       in.APIKey,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetByID loads a user row by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	return s.getWhere(ctx, `id = $1`, id)
}

// GetByUsername loads a user row by username.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.getWhere(ctx, `username = $1`, username)
}

func (s *PostgresStore) getWhere(ctx context.Context, cond string, arg any) (User, error) {
	var u User

	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, api_key,
		       is_active, last_login, created_at, updated_at
		FROM raven.users
		WHERE `+cond,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.APIKey,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}

// SetActive enables or disables an account.
func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE raven.users
		SET is_active = $2, updated_at = $3
		WHERE id = $1
	`, id, active, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login instant.
func (s *PostgresStore) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE raven.users
		SET last_login = $2, updated_at = $2
		WHERE id = $1
	`, id, now.UTC())
	return err
}
