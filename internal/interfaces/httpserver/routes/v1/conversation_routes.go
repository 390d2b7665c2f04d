package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/conversation-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(group *gin.RouterGroup, handler *handlers.ConversationHandler) {
	conversations := group.Group("/conversations")
	{
		conversations.POST("", handler.Create)
		conversations.GET("", handler.List)
		conversations.GET("/:conversation_id", handler.Get)
		conversations.PUT("/:conversation_id", handler.Rename)
		conversations.DELETE("/:conversation_id", handler.Delete)
		conversations.POST("/:conversation_id/messages", handler.AddMessage)
		conversations.GET("/:conversation_id/messages", handler.ListMessages)
	}
}
