package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-task-management-api/internal/interface/http"
	"github.com/oksasatya/go-task-management-api/internal/interface/middleware"
)

// AdminModule serves /api/v1/admin for authenticated admins.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Auth    gin.HandlerFunc
}

func NewAdminModule(h *handlers.AdminHandler, auth gin.HandlerFunc) *AdminModule {
	return &AdminModule{Handler: h, Auth: auth}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/v1/admin", m.Auth, middleware.AdminOnly())
	{
		g.GET("/users", m.Handler.ListUsers)
		g.GET("/users/:id/stats", m.Handler.UserStats)
		g.DELETE("/users/:id", m.Handler.DeleteUser)
	}
}
