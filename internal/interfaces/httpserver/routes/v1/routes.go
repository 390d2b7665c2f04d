package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/conversation-api/internal/interfaces/httpserver/handlers"
)

// Routes wires the v1 API group.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes constructs the v1 route set.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{handlers: handlerProvider}
}

// Register mounts all v1 routes under /v1.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")

	registerConversationRoutes(group, r.handlers.Conversation)
}
