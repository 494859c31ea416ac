package chat

import (
	"time"

	"github.com/google/uuid"
)

// Session is one chat conversation owned by a user. Ordinal is the session's
// position in the owner's ordered list, 1-based and contiguous per user.
type Session struct {
	ID      string
	UserID  string
	Title   string
	Ordinal int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record is one persisted chat message inside a session.
type Record struct {
	ID          string
	SessionID   string
	MessageType string // "user" or "assistant"
	Content     string
	ModelUsed   string

	PromptTokens     int
	CompletionTokens int

	CreatedAt time.Time
}

// CreateSessionInput describes a session creation request. Title may be empty;
// the store substitutes a numbered default.
type CreateSessionInput struct {
	UserID string
	Title  string
	Now    time.Time
}

// AppendRecordInput describes a chat record append request. UserID is the
// acting user; the session must belong to them.
type AppendRecordInput struct {
	UserID      string
	SessionID   string
	MessageType string
	Content     string
	ModelUsed   string

	PromptTokens     int
	CompletionTokens int

	Now time.Time
}

func (in AppendRecordInput) validate() error {
	if in.UserID == "" || in.SessionID == "" || in.Content == "" {
		return ErrInvalidInput
	}
	switch in.MessageType {
	case "user", "assistant":
		return nil
	default:
		return ErrInvalidInput
	}
}

// NewSessionID returns a new random id for a session or record.
func NewSessionID() string {
	return uuid.NewString()
}
