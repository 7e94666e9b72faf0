package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-management-api/internal/application"
	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
	"github.com/oksasatya/go-task-management-api/pkg/response"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// UserLookup resolves the subject of a verified token.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*entity.User, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Auth requires a valid bearer token whose subject still exists.
// It sets userID, userRole and userName in the Gin context on success.
// Storage is only consulted after the token verified.
func Auth(users UserLookup, tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Not authorized, no token", nil)
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Not authorized, token failed", nil)
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusUnauthorized, "Not authorized, user not found", nil)
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserRoleKey, string(u.Role))
		c.Set(CtxUserNameKey, u.Username)
		c.Next()
	}
}

// AdminOnly must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if entity.Role(c.GetString(CtxUserRoleKey)) != entity.RoleAdmin {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			return
		}
		c.Next()
	}
}
