package responses

import (
	"encoding/json"

	"jan-server/services/conversation-api/internal/domain/conversation"
)

// ConversationResponse represents the OpenAI-compatible conversation response
type ConversationResponse struct {
	ID           string  `json:"id"`
	Object       string  `json:"object"`
	Title        *string `json:"title,omitempty"`
	TitleStatus  string  `json:"title_status"`
	MessageCount int64   `json:"message_count"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

// ConversationListResponse represents a paginated list of conversations
type ConversationListResponse struct {
	Object  string                 `json:"object"`
	Data    []ConversationResponse `json:"data"`
	FirstID string                 `json:"first_id"`
	LastID  string                 `json:"last_id"`
	HasMore bool                   `json:"has_more"`
	Total   int64                  `json:"total"`
}

// ConversationDeletedResponse represents the delete confirmation response
type ConversationDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// MessageResponse represents a single conversation message
type MessageResponse struct {
	ID             string          `json:"id"`
	Object         string          `json:"object"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Sequence       int             `json:"sequence"`
	Annotations    json.RawMessage `json:"annotations,omitempty"`
	CreatedAt      int64           `json:"created_at"`
}

// MessageListResponse represents the list of a conversation's messages
type MessageListResponse struct {
	Object  string            `json:"object"`
	Data    []MessageResponse `json:"data"`
	FirstID string            `json:"first_id"`
	LastID  string            `json:"last_id"`
	HasMore bool              `json:"has_more"`
}

// NewConversationResponse creates a response from a domain conversation
func NewConversationResponse(conv *conversation.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:           conv.PublicID,
		Object:       conv.Object,
		Title:        conv.Title,
		TitleStatus:  string(conv.TitleStatus),
		MessageCount: conv.MessageCount,
		CreatedAt:    conv.CreatedAt.Unix(),
		UpdatedAt:    conv.UpdatedAt.Unix(),
	}
}

// NewConversationListResponse creates a conversation list response
func NewConversationListResponse(conversations []*conversation.Conversation, hasMore bool, total int64) *ConversationListResponse {
	data := make([]ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		data = append(data, *NewConversationResponse(conv))
	}

	firstID := ""
	lastID := ""
	if len(data) > 0 {
		firstID = data[0].ID
		lastID = data[len(data)-1].ID
	}

	return &ConversationListResponse{
		Object:  "list",
		Data:    data,
		FirstID: firstID,
		LastID:  lastID,
		HasMore: hasMore,
		Total:   total,
	}
}

// NewConversationDeletedResponse creates a delete response
func NewConversationDeletedResponse(publicID string) *ConversationDeletedResponse {
	return &ConversationDeletedResponse{
		ID:      publicID,
		Object:  "conversation.deleted",
		Deleted: true,
	}
}

// NewMessageResponse creates a response from a domain message. The
// conversation's public ID is passed in because messages carry only the
// numeric parent ID internally.
func NewMessageResponse(msg *conversation.Message, conversationPublicID string) *MessageResponse {
	return &MessageResponse{
		ID:             msg.PublicID,
		Object:         msg.Object,
		ConversationID: conversationPublicID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Sequence:       msg.Sequence,
		Annotations:    msg.Annotations,
		CreatedAt:      msg.CreatedAt.Unix(),
	}
}

// NewMessageListResponse creates a message list response
func NewMessageListResponse(msgs []*conversation.Message, conversationPublicID string) *MessageListResponse {
	data := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		data = append(data, *NewMessageResponse(msg, conversationPublicID))
	}

	firstID := ""
	lastID := ""
	if len(data) > 0 {
		firstID = data[0].ID
		lastID = data[len(data)-1].ID
	}

	return &MessageListResponse{
		Object:  "list",
		Data:    data,
		FirstID: firstID,
		LastID:  lastID,
		HasMore: false,
	}
}
