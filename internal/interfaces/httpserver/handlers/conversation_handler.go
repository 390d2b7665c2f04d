package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/interfaces/httpserver/requests"
	"jan-server/services/conversation-api/internal/interfaces/httpserver/responses"
	"jan-server/services/conversation-api/internal/utils/platformerrors"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// ConversationHandler exposes HTTP entrypoints for the Conversations API.
type ConversationHandler struct {
	service *conversation.ConversationService
	log     zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service *conversation.ConversationService, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("handler", "conversation").Logger(),
	}
}

// Create handles POST /v1/conversations
// @Summary Create a conversation
// @Description Creates a conversation, optionally seeded with user messages persisted in order.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body requests.CreateConversationRequest true "Create request"
// @Success 200 {object} responses.ConversationResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "9f2f1660-35c7-4a29-b86a-12c5d8f0e3b7")
		return
	}

	conv, err := h.service.CreateConversation(c.Request.Context(), conversation.CreateConversationInput{
		UserID:       resolveUserID(c),
		Title:        req.Title,
		SeedMessages: req.SeedMessages,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}

	c.JSON(http.StatusOK, responses.NewConversationResponse(conv))
}

// List handles GET /v1/conversations
// @Summary List conversations
// @Description Lists the caller's conversations, most recently updated first.
// @Tags Conversations
// @Produce json
// @Param limit query int false "Maximum number of conversations to return (default 25, max 100)"
// @Param offset query int false "Number of conversations to skip"
// @Success 200 {object} responses.ConversationListResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	var params requests.ListConversationsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query parameters", "0d4c7a8e-91b3-4f6d-8a25-6e0f13c9d7b4")
		return
	}

	limit := defaultListLimit
	if params.Limit != nil {
		if *params.Limit <= 0 {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "limit must be greater than zero", "5b8e2d14-70cf-4a93-b6e1-84d20a9c3f56")
			return
		}
		limit = *params.Limit
		if limit > maxListLimit {
			limit = maxListLimit
		}
	}

	offset := 0
	if params.Offset != nil {
		if *params.Offset < 0 {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "offset must not be negative", "7a1f9c02-4e6b-48d5-9317-c80b5f2ae6d9")
			return
		}
		offset = *params.Offset
	}

	// Fetch limit+1 rows so has_more comes out of the same query.
	pagination := &conversation.Pagination{Limit: limit + 1, Offset: offset}

	conversations, total, err := h.service.ListConversations(c.Request.Context(), resolveUserID(c), pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	hasMore := len(conversations) > limit
	if hasMore {
		conversations = conversations[:limit]
	}

	c.JSON(http.StatusOK, responses.NewConversationListResponse(conversations, hasMore, total))
}

// Get handles GET /v1/conversations/:conversation_id
// @Summary Get a conversation
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID (format: conv_xxxxx)"
// @Success 200 {object} responses.ConversationResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.service.GetConversation(c.Request.Context(), c.Param("conversation_id"), resolveUserID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to get conversation")
		return
	}

	c.JSON(http.StatusOK, responses.NewConversationResponse(conv))
}

// Rename handles PUT /v1/conversations/:conversation_id
// @Summary Rename a conversation
// @Description Replaces the title. A rename always wins over an in-flight generated title.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID (format: conv_xxxxx)"
// @Param request body requests.RenameConversationRequest true "Rename request"
// @Success 200 {object} responses.ConversationResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [put]
func (h *ConversationHandler) Rename(c *gin.Context) {
	var req requests.RenameConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "e3c61b7a-0f84-40d2-95a6-b12d87e4c903")
		return
	}

	conv, err := h.service.RenameConversation(c.Request.Context(), c.Param("conversation_id"), resolveUserID(c), req.Title)
	if err != nil {
		responses.HandleError(c, err, "failed to rename conversation")
		return
	}

	c.JSON(http.StatusOK, responses.NewConversationResponse(conv))
}

// Delete handles DELETE /v1/conversations/:conversation_id
// @Summary Delete a conversation
// @Description Deletes the conversation and all of its messages.
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID (format: conv_xxxxx)"
// @Success 200 {object} responses.ConversationDeletedResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	if err := h.service.DeleteConversation(c.Request.Context(), conversationID, resolveUserID(c)); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}

	c.JSON(http.StatusOK, responses.NewConversationDeletedResponse(conversationID))
}

// AddMessage handles POST /v1/conversations/:conversation_id/messages
// @Summary Add a message
// @Description Appends a message to the conversation with the next sequence number.
// @Tags Messages
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID (format: conv_xxxxx)"
// @Param request body requests.AddMessageRequest true "Message to append"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/messages [post]
func (h *ConversationHandler) AddMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req requests.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "1c97f2d5-83ab-4b60-a7e4-f05d29c8b1a6")
		return
	}

	msg, err := h.service.AddMessage(c.Request.Context(), conversation.AddMessageInput{
		ConversationID: conversationID,
		UserID:         resolveUserID(c),
		Role:           conversation.Role(req.Role),
		Content:        req.Content,
		Annotations:    req.Annotations,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to add message")
		return
	}

	c.JSON(http.StatusOK, responses.NewMessageResponse(msg, conversationID))
}

// ListMessages handles GET /v1/conversations/:conversation_id/messages
// @Summary List messages
// @Description Lists the conversation's messages in sequence order. An unknown conversation yields an empty list.
// @Tags Messages
// @Produce json
// @Param conversation_id path string true "Conversation ID (format: conv_xxxxx)"
// @Success 200 {object} responses.MessageListResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	msgs, err := h.service.GetMessages(c.Request.Context(), conversationID, resolveUserID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, responses.NewMessageListResponse(msgs, conversationID))
}

// resolveUserID picks the caller identity: the JWT subject when auth ran,
// then the X-User-ID header, then the shared guest partition.
func resolveUserID(c *gin.Context) string {
	if sub := extractSubject(c); sub != "" {
		return sub
	}
	if header := c.GetHeader("X-User-ID"); header != "" {
		return header
	}
	return "guest"
}

func extractSubject(c *gin.Context) string {
	tokenValue, exists := c.Get("auth_token")
	if !exists {
		return ""
	}
	token, ok := tokenValue.(*jwt.Token)
	if !ok {
		return ""
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if sub, ok := claims["sub"].(string); ok {
			return sub
		}
	}
	return ""
}
