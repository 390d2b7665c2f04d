package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"jan-server/services/conversation-api/internal/domain/conversation"
)

// ConversationMessage represents the database schema for conversation messages.
type ConversationMessage struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID       string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint              `gorm:"uniqueIndex:idx_messages_conversation_sequence;not null"`
	UserID         string            `gorm:"type:varchar(255);not null"`
	Role           conversation.Role `gorm:"type:varchar(20);not null"`
	Content        string            `gorm:"type:text;not null"`
	Sequence       int               `gorm:"uniqueIndex:idx_messages_conversation_sequence;not null"`
	Annotations    datatypes.JSON    `gorm:"type:jsonb"`
}

// TableName specifies the table name for ConversationMessage.
func (ConversationMessage) TableName() string {
	return "conversation_api.conversation_messages"
}

// EtoD converts database entity to domain model.
func (m *ConversationMessage) EtoD() *conversation.Message {
	var annotations json.RawMessage
	if len(m.Annotations) > 0 {
		annotations = json.RawMessage(m.Annotations)
	}
	return &conversation.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		Object:         conversation.ObjectMessage,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		Role:           m.Role,
		Content:        m.Content,
		Sequence:       m.Sequence,
		Annotations:    annotations,
		CreatedAt:      m.CreatedAt,
	}
}

// NewSchemaMessage creates a database entity from domain model.
func NewSchemaMessage(m *conversation.Message) *ConversationMessage {
	var annotations datatypes.JSON
	if len(m.Annotations) > 0 {
		annotations = datatypes.JSON(m.Annotations)
	}
	return &ConversationMessage{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		Role:           m.Role,
		Content:        m.Content,
		Sequence:       m.Sequence,
		Annotations:    annotations,
		CreatedAt:      m.CreatedAt,
	}
}
