package response

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Status    int          `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	RequestID string       `json:"request_id,omitempty"`
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Count     *int         `json:"count,omitempty"`
	Data      T            `json:"data,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
	Stack     string       `json:"stack,omitempty"`
}

// Success writes a successful envelope with data.
func Success[T any](ctx *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	})
}

// List writes a successful envelope with data and its length as count.
func List[T any](ctx *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	ctx.JSON(http.StatusOK, APIResponse[[]T]{
		Status:    http.StatusOK,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Count:     &n,
		Data:      items,
	})
}

// Message writes a successful envelope without data.
func Message(ctx *gin.Context, status int, message string) {
	Success[any](ctx, status, nil, message)
}

// Error aborts the request with a failure envelope.
func Error(ctx *gin.Context, status int, message string, fields map[string]string) {
	ErrorWithStack(ctx, status, message, fields, "")
}

// ErrorWithStack is Error with a diagnostic trace attached.
func ErrorWithStack(ctx *gin.Context, status int, message string, fields map[string]string, stack string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, APIResponse[any]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Errors:    Fields(fields),
		Stack:     stack,
	})
}

// FieldError is one field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Fields flattens a field->message map into a list ordered by field name.
func Fields(m map[string]string) []FieldError {
	if len(m) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(m))
	for f, msg := range m {
		out = append(out, FieldError{Field: f, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
