package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-management-api/internal/application"
	"github.com/oksasatya/go-task-management-api/internal/interface/middleware"
	"github.com/oksasatya/go-task-management-api/pkg/response"
)

type AdminHandler struct {
	Svc *application.AdminService
}

func NewAdminHandler(svc *application.AdminService) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// ListUsers GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, users)
}

// UserStats GET /api/v1/admin/users/:id/stats
func (h *AdminHandler) UserStats(c *gin.Context) {
	st, err := h.Svc.UserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, st, "")
}

// DeleteUser DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "User and associated tasks deleted")
}
