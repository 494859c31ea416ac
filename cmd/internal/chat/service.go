package chat

import (
	"context"
	"log/slog"
)

// Service is the handler-facing surface over a chat Store. It exists to keep
// logging and input normalization out of the stores.
type Service struct {
	log   *slog.Logger
	store Store
}

// NewService wires a chat service over the given store.
func NewService(log *slog.Logger, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, store: store}
}

// Create starts a new session for the user, appended at the end of their list.
func (s *Service) Create(ctx context.Context, userID, title string) (Session, error) {
	sess, err := s.store.CreateSession(ctx, CreateSessionInput{UserID: userID, Title: title})
	if err != nil {
		return Session{}, err
	}
	s.log.Info("chat.session.created", "user_id", userID, "session_id", sess.ID, "ordinal", sess.Ordinal)
	return sess, nil
}

// List returns the user's sessions in ordinal order.
func (s *Service) List(ctx context.Context, userID string) ([]Session, error) {
	return s.store.ListSessions(ctx, userID)
}

// Rename changes a session title.
func (s *Service) Rename(ctx context.Context, userID, sessionID, title string) error {
	return s.store.RenameSession(ctx, userID, sessionID, title)
}

// Move relocates a session to newOrdinal, shifting its neighbors.
func (s *Service) Move(ctx context.Context, userID, sessionID string, newOrdinal int) error {
	if err := s.store.MoveSession(ctx, userID, sessionID, newOrdinal); err != nil {
		return err
	}
	s.log.Info("chat.session.moved", "user_id", userID, "session_id", sessionID, "ordinal", newOrdinal)
	return nil
}

// Delete removes a session and compacts the remaining ordinals.
func (s *Service) Delete(ctx context.Context, userID, sessionID string) error {
	if err := s.store.DeleteSession(ctx, userID, sessionID); err != nil {
		return err
	}
	s.log.Info("chat.session.deleted", "user_id", userID, "session_id", sessionID)
	return nil
}

// Append stores one chat record on a session.
func (s *Service) Append(ctx context.Context, in AppendRecordInput) (Record, error) {
	return s.store.AppendRecord(ctx, in)
}

// Records returns a session's chat records in insertion order. The session
// must belong to userID.
func (s *Service) Records(ctx context.Context, userID, sessionID string) ([]Record, error) {
	return s.store.ListRecords(ctx, userID, sessionID)
}
