package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-task-management-api/internal/interface/http"
)

// AuthModule serves /api/auth. Register and login share the strict limiter.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
	Limiter gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth, limiter gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth, Limiter: limiter}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Limiter, m.Handler.Register)
	g.POST("/login", m.Limiter, m.Handler.Login)
	g.GET("/me", m.Auth, m.Handler.Me)
}
