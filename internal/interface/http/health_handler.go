package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-management-api/pkg/response"
)

// Health GET /health
func Health(c *gin.Context) {
	response.Message(c, http.StatusOK, "API is running")
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, "Route not found", nil)
}
