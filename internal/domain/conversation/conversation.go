package conversation

import (
	"context"
	"time"
)

// ===============================================
// Conversation Types
// ===============================================

// TitleStatus tracks the title derivation state machine. A conversation is
// untitled until a derivation is queued (pending) and completes (titled);
// a failed derivation drops it back to untitled so the next qualifying
// message add can re-arm it. Renaming always lands on titled.
type TitleStatus string

const (
	TitleStatusUntitled TitleStatus = "untitled"
	TitleStatusPending  TitleStatus = "pending"
	TitleStatusTitled   TitleStatus = "titled"
)

// ObjectConversation is the object discriminator on API payloads.
const ObjectConversation = "conversation"

// ===============================================
// Conversation Structure
// ===============================================

// Conversation is a per-user chat thread. UserID is the partition key: every
// read and write is scoped to it, and it never changes after creation.
type Conversation struct {
	ID           uint        `json:"-"`
	PublicID     string      `json:"id"` // caller-visible ID like "conv_abc123"
	Object       string      `json:"object"`
	UserID       string      `json:"-"`
	Title        *string     `json:"title,omitempty"`
	TitleStatus  TitleStatus `json:"title_status"`
	MessageCount int64       `json:"message_count"`

	// TitleAttemptedAt is the last time a worker claimed this conversation
	// for title derivation. Only meaningful while TitleStatus is pending.
	TitleAttemptedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates a conversation record with the given identity,
// initial title and title status.
func NewConversation(publicID, userID string, title *string, status TitleStatus) *Conversation {
	now := time.Now()
	return &Conversation{
		PublicID:     publicID,
		Object:       ObjectConversation,
		UserID:       userID,
		Title:        title,
		TitleStatus:  status,
		MessageCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ===============================================
// Conversation Repository
// ===============================================

// Pagination holds limit/offset paging bounds for list queries.
type Pagination struct {
	Limit  int
	Offset int
}

// Repository is the partition-scoped persistence contract for conversations.
// Lookups take the owning userID and treat a row owned by a different user
// exactly like an absent row. Mutations after creation are targeted column
// writes so concurrent appends, renames and title transitions never clobber
// each other's columns.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID, userID string) (*Conversation, error)
	FindByUserID(ctx context.Context, userID string, pagination *Pagination) ([]*Conversation, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)

	// Update saves the full record. Only safe while the caller holds the
	// record exclusively, i.e. right after Create before the public ID has
	// been returned to anyone.
	Update(ctx context.Context, conv *Conversation) error

	// UpdateTitle overwrites the title, finalizes the title status and bumps
	// updated_at, returning the record as stored.
	UpdateTitle(ctx context.Context, id uint, title string) (*Conversation, error)

	// IncrementMessageCount atomically bumps message_count and updated_at.
	IncrementMessageCount(ctx context.Context, id uint) error

	// MarkTitlePending arms title derivation, moving untitled to pending.
	// False without writing when the conversation is not untitled.
	MarkTitlePending(ctx context.Context, id uint) (bool, error)

	// MarkTitleCompleted persists a derived title and moves the status from
	// pending to titled. It reports false without writing when the status is
	// no longer pending (a rename won the race).
	MarkTitleCompleted(ctx context.Context, id uint, title string) (bool, error)

	// MarkTitleFailed moves the status from pending back to untitled so the
	// next qualifying message add can retry. False when no longer pending.
	MarkTitleFailed(ctx context.Context, id uint) (bool, error)

	// DeleteCascade removes all of the conversation's messages and then the
	// conversation row itself. When message deletion fails partway the
	// conversation row is kept and the error is retryable.
	DeleteCascade(ctx context.Context, id uint, userID string) error
}
