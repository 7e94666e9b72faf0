package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-task-management-api/internal/interface/http"
)

// HealthModule serves /health and, when set, the Prometheus scrape endpoint.
type HealthModule struct {
	Metrics http.Handler
}

func NewHealthModule(metrics http.Handler) *HealthModule {
	return &HealthModule{Metrics: metrics}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", handlers.Health)
	if m.Metrics != nil {
		rg.GET("/metrics", gin.WrapH(m.Metrics))
	}
}
