package handlers

import (
	"github.com/rs/zerolog"

	"jan-server/services/conversation-api/internal/domain/conversation"
)

// Provider bundles the HTTP handlers for route registration.
type Provider struct {
	Conversation *ConversationHandler
}

// NewProvider constructs all handlers.
func NewProvider(service *conversation.ConversationService, log zerolog.Logger) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(service, log),
	}
}
