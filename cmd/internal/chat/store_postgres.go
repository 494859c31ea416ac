package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by PostgreSQL (raven.sessions,
// raven.chat_records).
//
// Ownership model: the store does NOT own the pgx pool; the caller closes it.
// Close() is therefore a no-op.
//
// Concurrency model: every ordinal mutation takes a transactional advisory
// lock keyed on the user id, so all ordinal writes for one user serialize.
// The UNIQUE (user_id, ordinal) constraint is DEFERRABLE INITIALLY DEFERRED;
// the per-shift updates inside a transaction may pass through transient
// duplicates, but the constraint holds at every commit.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed chat store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("chat: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close is a no-op because the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

// CreateSession inserts a session at ordinal = count + 1 for its user.
func (s *PostgresStore) CreateSession(ctx context.Context, in CreateSessionInput) (Session, error) {
	if in.UserID == "" {
		return Session{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var created Session
	err := s.withUserLock(ctx, in.UserID, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM raven.sessions WHERE user_id = $1`,
			in.UserID,
		).Scan(&count); err != nil {
			return err
		}

		ordinal := count + 1
		title := in.Title
		if title == "" {
			title = fmt.Sprintf("Conversation %d", ordinal)
		}

		created = Session{
			ID:        NewSessionID(),
			UserID:    in.UserID,
			Title:     title,
			Ordinal:   ordinal,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO raven.sessions (id, user_id, title, ordinal, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`, created.ID, created.UserID, created.Title, created.Ordinal, now)
		return err
	})
	if err != nil {
		return Session{}, err
	}

	return created, nil
}

// ListSessions returns the user's sessions ordered by ordinal ascending.
func (s *PostgresStore) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, ordinal, created_at, updated_at
		FROM raven.sessions
		WHERE user_id = $1
		ORDER BY ordinal ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.Ordinal, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// RenameSession updates a session title.
func (s *PostgresStore) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	if title == "" {
		return ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE raven.sessions
		SET title = $3, updated_at = $4
		WHERE user_id = $1 AND id = $2
	`, userID, sessionID, title, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// MoveSession relocates a session to newOrdinal. Neighbors shift first, the
// target is set last, all inside one transaction under the per-user lock, so
// a concurrent reader never observes a duplicate or missing ordinal.
func (s *PostgresStore) MoveSession(ctx context.Context, userID, sessionID string, newOrdinal int) error {
	return s.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		refs, err := readRefsTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		plan, err := PlanMove(refs, sessionID, newOrdinal)
		if err != nil {
			return err
		}
		if plan.NoOp {
			return nil
		}

		now := time.Now().UTC()
		for _, sh := range plan.Shifts {
			if _, err := tx.Exec(ctx,
				`UPDATE raven.sessions SET ordinal = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`,
				userID, sh.SessionID, sh.To, now,
			); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE raven.sessions SET ordinal = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`,
			userID, plan.TargetID, plan.ToOrdinal, now,
		)
		return err
	})
}

// DeleteSession removes a session and compacts the ordinals above it.
// Records belonging to the session are removed by ON DELETE CASCADE.
func (s *PostgresStore) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return s.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		refs, err := readRefsTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		plan, err := PlanRemoval(refs, sessionID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM raven.sessions WHERE user_id = $1 AND id = $2`,
			userID, sessionID,
		); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, sh := range plan.Shifts {
			if _, err := tx.Exec(ctx,
				`UPDATE raven.sessions SET ordinal = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`,
				userID, sh.SessionID, sh.To, now,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendRecord inserts one chat record. The session must belong to the
// acting user.
func (s *PostgresStore) AppendRecord(ctx context.Context, in AppendRecordInput) (Record, error) {
	if err := in.validate(); err != nil {
		return Record{}, err
	}
	if err := s.checkSessionOwner(ctx, in.UserID, in.SessionID); err != nil {
		return Record{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rec := Record{
		ID:               NewSessionID(),
		SessionID:        in.SessionID,
		MessageType:      in.MessageType,
		Content:          in.Content,
		ModelUsed:        in.ModelUsed,
		PromptTokens:     in.PromptTokens,
		CompletionTokens: in.CompletionTokens,
		CreatedAt:        now,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO raven.chat_records (
			id, session_id, message_type, content, model_used,
			prompt_tokens, completion_tokens, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.SessionID, rec.MessageType, rec.Content, rec.ModelUsed,
		rec.PromptTokens, rec.CompletionTokens, rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// ListRecords returns a session's records in insertion order. The session
// must belong to the acting user.
func (s *PostgresStore) ListRecords(ctx context.Context, userID, sessionID string) ([]Record, error) {
	if err := s.checkSessionOwner(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, message_type, content, model_used,
		       prompt_tokens, completion_tokens, created_at
		FROM raven.chat_records
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.MessageType, &r.Content, &r.ModelUsed,
			&r.PromptTokens, &r.CompletionTokens, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// checkSessionOwner reports ErrSessionNotFound unless the session exists and
// belongs to userID. Missing and not-owned are indistinguishable on purpose.
func (s *PostgresStore) checkSessionOwner(ctx context.Context, userID, sessionID string) error {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM raven.sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSessionNotFound
	}
	return err
}

// withUserLock runs fn inside a transaction holding the per-user advisory
// lock. hashtextextended reduces collision risk vs hashtext.
func (s *PostgresStore) withUserLock(ctx context.Context, userID string, fn func(tx pgx.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func readRefsTx(ctx context.Context, tx pgx.Tx, userID string) ([]SessionRef, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, ordinal
		FROM raven.sessions
		WHERE user_id = $1
		ORDER BY ordinal ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []SessionRef
	for rows.Next() {
		var r SessionRef
		if err := rows.Scan(&r.ID, &r.Ordinal); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}
