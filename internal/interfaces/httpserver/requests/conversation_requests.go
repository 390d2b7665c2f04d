package requests

import "encoding/json"

// CreateConversationRequest represents the request to create a conversation.
// Seed messages are persisted in order as user-role messages.
type CreateConversationRequest struct {
	Title        *string  `json:"title,omitempty"`
	SeedMessages []string `json:"seed_messages,omitempty"`
}

// RenameConversationRequest represents the request to rename a conversation.
type RenameConversationRequest struct {
	Title string `json:"title" binding:"required"`
}

// AddMessageRequest represents the request to append a message.
type AddMessageRequest struct {
	Role        string          `json:"role" binding:"required"`
	Content     string          `json:"content" binding:"required"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
}

// ListConversationsQueryParams represents query parameters for listing
// conversations.
type ListConversationsQueryParams struct {
	Limit  *int `form:"limit"`
	Offset *int `form:"offset"`
}
