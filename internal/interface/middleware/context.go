package middleware

import "github.com/gin-gonic/gin"

// Keys set on the gin context by this package.
const (
	CtxUserIDKey    = "userID"
	CtxUserRoleKey  = "userRole"
	CtxUserNameKey  = "userName"
	CtxRequestIDKey = "request_id"
	CtxRealIPKey    = "real_ip"
)

// UserID returns the authenticated user's id, or "" before Auth ran.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return "unmatched"
}
