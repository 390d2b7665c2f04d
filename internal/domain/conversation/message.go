package conversation

import (
	"context"
	"encoding/json"
	"time"
)

// ===============================================
// Message Types
// ===============================================

// Role identifies the author side of a message. The set is closed; anything
// else is rejected at validation time.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// ObjectMessage is the object discriminator on API payloads.
const ObjectMessage = "conversation.message"

// ===============================================
// Message Structure
// ===============================================

// Message is an immutable entry in a conversation. Sequence numbers start at
// 0 and are contiguous and unique within a conversation; together with
// CreatedAt and the insertion ID they define the stable total order.
// Annotations are opaque passthrough data, never interpreted here.
type Message struct {
	ID             uint            `json:"-"`
	PublicID       string          `json:"id"` // caller-visible ID like "msg_abc123"
	Object         string          `json:"object"`
	ConversationID uint            `json:"-"`
	UserID         string          `json:"-"`
	Role           Role            `json:"role"`
	Content        string          `json:"content"`
	Sequence       int             `json:"sequence"`
	Annotations    json.RawMessage `json:"annotations,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewMessage creates a message record for the given conversation partition.
func NewMessage(publicID string, conversationID uint, userID string, role Role, content string, sequence int) *Message {
	return &Message{
		PublicID:       publicID,
		Object:         ObjectMessage,
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		Sequence:       sequence,
		CreatedAt:      time.Now(),
	}
}

// ===============================================
// Message Repository
// ===============================================

// MessageRepository persists messages inside their conversation's partition.
// Insert surfaces a conflict error when the (conversation, sequence) pair is
// already taken so the caller can re-assign and retry, and a not-found error
// when the parent conversation is gone.
type MessageRepository interface {
	Insert(ctx context.Context, msg *Message) error
	BulkInsert(ctx context.Context, msgs []*Message) error
	ListByConversation(ctx context.Context, conversationID uint) ([]*Message, error)

	// NextSequence returns the next free sequence number, 0 for an empty
	// conversation.
	NextSequence(ctx context.Context, conversationID uint) (int, error)
}
