package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-task-management-api/internal/interface/http"
)

// TaskModule serves /api/tasks; every route requires authentication.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Auth    gin.HandlerFunc
}

func NewTaskModule(h *handlers.TaskHandler, auth gin.HandlerFunc) *TaskModule {
	return &TaskModule{Handler: h, Auth: auth}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/tasks", m.Auth)
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/stats", m.Handler.Stats)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PATCH("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
