package chat

import (
	"context"
)

// Store persists chat sessions and records.
//
// Requirements:
//   - CreateSession assigns ordinal = current session count + 1, atomically
//     with respect to other ordinal mutations for the same user.
//   - ListSessions returns sessions ordered by ordinal ascending.
//   - MoveSession applies the PlanMove shifts and the final set as one atomic
//     unit; conflicting moves for the same user serialize.
//   - DeleteSession removes the session and compacts the remaining ordinals
//     (PlanRemoval), atomically.
//   - ListRecords returns records in insertion order.
//   - AppendRecord and ListRecords verify the session belongs to the acting
//     user and return ErrSessionNotFound on mismatch, so one user can never
//     read or write another user's history.
type Store interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (Session, error)
	ListSessions(ctx context.Context, userID string) ([]Session, error)
	RenameSession(ctx context.Context, userID, sessionID, title string) error
	MoveSession(ctx context.Context, userID, sessionID string, newOrdinal int) error
	DeleteSession(ctx context.Context, userID, sessionID string) error

	AppendRecord(ctx context.Context, in AppendRecordInput) (Record, error)
	ListRecords(ctx context.Context, userID, sessionID string) ([]Record, error)

	Close() error
}
