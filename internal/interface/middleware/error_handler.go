package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/internal/application"
	"github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/pkg/response"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{application.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
	{application.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{repository.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{application.ErrForbidden, http.StatusForbidden, "Not authorized to access this task"},
	{application.ErrCannotDeleteSelf, http.StatusForbidden, "Cannot delete your own account"},
	{application.ErrCannotDeleteAdmin, http.StatusForbidden, "Cannot delete admin users"},
	{application.ErrDuplicateUser, http.StatusBadRequest, "Duplicate field value entered"},
	{repository.ErrDuplicate, http.StatusBadRequest, "Duplicate field value entered"},
	{application.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
}

// classify maps an error to its HTTP status, message and field errors.
func classify(err error) (int, string, map[string]string) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "Validation failed", verr.Fields
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.message, nil
		}
	}
	return http.StatusInternalServerError, "Server Error", nil
}

// ErrorHandler turns the last error pushed with c.Error into the JSON error envelope.
// Outside production, 500 responses carry the error chain in "stack".
func ErrorHandler(logger *logrus.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, message, fields := classify(err)

		entry := logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(CtxRequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		if c.Writer.Written() {
			return
		}
		stack := ""
		if status >= http.StatusInternalServerError && !production {
			stack = errorChain(err)
		}
		response.ErrorWithStack(c, status, message, fields, stack)
	}
}

// Recovery converts panics into a 500 envelope and logs the goroutine stack.
func Recovery(logger *logrus.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		stack := string(debug.Stack())
		logger.WithFields(logrus.Fields{
			"panic":      fmt.Sprint(rec),
			"request_id": c.GetString(CtxRequestIDKey),
			"path":       c.Request.URL.Path,
			"stack":      stack,
		}).Error("panic recovered")
		if production {
			stack = ""
		}
		response.ErrorWithStack(c, http.StatusInternalServerError, "Server Error", nil, stack)
	})
}

func errorChain(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\ncaused by: ")
}
