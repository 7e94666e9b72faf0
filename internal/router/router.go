package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-task-management-api/internal/interface/http"
	"github.com/oksasatya/go-task-management-api/internal/interface/middleware"
)

// New builds the engine with global middleware and every module registered.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	production := cfg.IsProduction()

	r := gin.New()
	r.Use(middleware.Recovery(d.Logger, production))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxy))
	r.Use(middleware.SecurityHeaders())
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(d.Logger))
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))
	r.Use(middleware.ErrorHandler(d.Logger, production))

	reg := NewRegistry(r)
	InitModules(reg, d)
	reg.RegisterAll()
	r.NoRoute(handlers.NotFound)
	return r
}

// corsConfig allows any origin when none is configured. Credentials are only
// allowed for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
