package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a dev/test fallback when DB is not configured. A single
// mutex serializes all mutations, which trivially satisfies the per-user
// atomicity the ordinal invariant requires.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session // session id -> session
	byUser   map[string][]string // user id -> session ids
	records  map[string][]Record // session id -> records in insertion order
}

// NewInMemoryStore constructs an empty in-memory chat store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
		byUser:   make(map[string][]string),
		records:  make(map[string][]Record),
	}
}

// Close closes the store (noop for in-memory).
func (s *InMemoryStore) Close() error { return nil }

// CreateSession inserts a session at ordinal = count + 1 for its user.
func (s *InMemoryStore) CreateSession(ctx context.Context, in CreateSessionInput) (Session, error) {
	if in.UserID == "" {
		return Session{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ordinal := len(s.byUser[in.UserID]) + 1
	title := in.Title
	if title == "" {
		title = fmt.Sprintf("Conversation %d", ordinal)
	}

	sess := Session{
		ID:        NewSessionID(),
		UserID:    in.UserID,
		Title:     title,
		Ordinal:   ordinal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = &sess
	s.byUser[in.UserID] = append(s.byUser[in.UserID], sess.ID)

	return sess, nil
}

// ListSessions returns the user's sessions ordered by ordinal ascending.
func (s *InMemoryStore) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Session, 0, len(s.byUser[userID]))
	for _, id := range s.byUser[userID] {
		out = append(out, *s.sessions[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

// RenameSession updates a session title.
func (s *InMemoryStore) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	if title == "" {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return ErrSessionNotFound
	}
	sess.Title = title
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// MoveSession relocates a session to newOrdinal under the store mutex.
// Shifts apply before the final set, and nothing is published mid-way.
func (s *InMemoryStore) MoveSession(ctx context.Context, userID, sessionID string, newOrdinal int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := PlanMove(s.refsLocked(userID), sessionID, newOrdinal)
	if err != nil {
		return err
	}
	if plan.NoOp {
		return nil
	}

	now := time.Now().UTC()
	for _, sh := range plan.Shifts {
		s.sessions[sh.SessionID].Ordinal = sh.To
		s.sessions[sh.SessionID].UpdatedAt = now
	}
	s.sessions[plan.TargetID].Ordinal = plan.ToOrdinal
	s.sessions[plan.TargetID].UpdatedAt = now
	return nil
}

// DeleteSession removes a session, its records, and compacts ordinals.
func (s *InMemoryStore) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return ErrSessionNotFound
	}

	plan, err := PlanRemoval(s.refsLocked(userID), sessionID)
	if err != nil {
		return err
	}

	delete(s.sessions, sessionID)
	delete(s.records, sessionID)

	ids := s.byUser[userID]
	for i, id := range ids {
		if id == sessionID {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	now := time.Now().UTC()
	for _, sh := range plan.Shifts {
		s.sessions[sh.SessionID].Ordinal = sh.To
		s.sessions[sh.SessionID].UpdatedAt = now
	}
	return nil
}

// AppendRecord appends one chat record to a session.
func (s *InMemoryStore) AppendRecord(ctx context.Context, in AppendRecordInput) (Record, error) {
	if err := in.validate(); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[in.SessionID]
	if !ok || sess.UserID != in.UserID {
		return Record{}, ErrSessionNotFound
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
	s.records[in.SessionID] = append(s.records[in.SessionID], rec)
	return rec, nil
}

// ListRecords returns a session's records in insertion order. The session
// must belong to userID.
func (s *InMemoryStore) ListRecords(ctx context.Context, userID, sessionID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}

	recs := s.records[sessionID]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

// refsLocked snapshots (id, ordinal) pairs for one user. Caller holds mu.
func (s *InMemoryStore) refsLocked(userID string) []SessionRef {
	refs := make([]SessionRef, 0, len(s.byUser[userID]))
	for _, id := range s.byUser[userID] {
		refs = append(refs, SessionRef{ID: id, Ordinal: s.sessions[id].Ordinal})
	}
	return refs
}
