package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-management-api/internal/application"
	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/internal/interface/middleware"
	"github.com/oksasatya/go-task-management-api/pkg/response"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Labels entity.StatusLabels
}

func NewTaskHandler(svc *application.TaskService, labels entity.StatusLabels) *TaskHandler {
	return &TaskHandler{Svc: svc, Labels: labels}
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Assignee    string     `json:"assignee"`
	Labels      []string   `json:"labels"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (h *TaskHandler) toResponse(t *entity.Task) taskResponse {
	labels := t.Labels
	if labels == nil {
		labels = []string{}
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      h.Labels.Label(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Assignee:    t.Assignee,
		Labels:      labels,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (h *TaskHandler) toList(tasks []*entity.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, h.toResponse(t))
	}
	return out
}

// List GET /api/tasks?status=&priority=
func (h *TaskHandler) List(c *gin.Context) {
	var q application.TaskQuery
	_ = c.ShouldBindQuery(&q)
	tasks, err := h.Svc.List(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, h.toList(tasks))
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req application.CreateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, h.toResponse(t), "")
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, h.toResponse(t), "")
}

// Update PATCH /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req application.UpdateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, h.toResponse(t), "")
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, struct{}{}, "Task deleted")
}

// Stats GET /api/tasks/stats
func (h *TaskHandler) Stats(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, st, "")
}

// Search GET /api/tasks/search?q=&limit=
func (h *TaskHandler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(application.NewValidationError(map[string]string{"limit": "must be a positive integer"}))
			return
		}
		limit = n
	}
	tasks, err := h.Svc.Search(c.Request.Context(), middleware.UserID(c), c.Query("q"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, h.toList(tasks))
}
