package entities

import (
	"time"

	"jan-server/services/conversation-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID         string                   `gorm:"type:varchar(50);uniqueIndex;not null"`
	Object           string                   `gorm:"type:varchar(50);not null;default:'conversation'"`
	UserID           string                   `gorm:"type:varchar(255);index:idx_conversations_user_updated;not null"`
	Title            *string                  `gorm:"type:varchar(256)"`
	TitleStatus      conversation.TitleStatus `gorm:"type:varchar(20);not null;default:'untitled'"`
	MessageCount     int64                    `gorm:"not null;default:0"`
	TitleAttemptedAt *time.Time
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversation_api.conversations"
}

// EtoD converts database entity to domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:               c.ID,
		PublicID:         c.PublicID,
		Object:           c.Object,
		UserID:           c.UserID,
		Title:            c.Title,
		TitleStatus:      c.TitleStatus,
		MessageCount:     c.MessageCount,
		TitleAttemptedAt: c.TitleAttemptedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:               c.ID,
		PublicID:         c.PublicID,
		Object:           c.Object,
		UserID:           c.UserID,
		Title:            c.Title,
		TitleStatus:      c.TitleStatus,
		MessageCount:     c.MessageCount,
		TitleAttemptedAt: c.TitleAttemptedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
