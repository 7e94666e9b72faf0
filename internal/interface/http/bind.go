package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-management-api/internal/application"
	"github.com/oksasatya/go-task-management-api/pkg/validation"
)

// bindJSON decodes the body into dst. Decoding problems, including unknown
// fields and wrong types, are pushed as a ValidationError.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(application.NewValidationError(validation.ToDetails(err)))
		return false
	}
	return true
}
