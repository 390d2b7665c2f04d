package routes

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/conversation-api/internal/interfaces/httpserver/handlers"
	v1 "jan-server/services/conversation-api/internal/interfaces/httpserver/routes/v1"
)

// Provider registers all versioned API routes.
type Provider struct {
	v1Routes *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		v1Routes: v1.NewRoutes(handlerProvider),
	}
}

// Register attaches the route tree to the engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.v1Routes.Register(engine)
}
