package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client IP under "real_ip".
// Priority: CF-Connecting-IP, X-Real-IP, left-most X-Forwarded-For, c.ClientIP().
// Only enable trustHeaders behind a proxy that overwrites these headers.
func RealIP(trustHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		if trustHeaders {
			ip = firstValidIP(
				c.GetHeader("CF-Connecting-IP"),
				c.GetHeader("X-Real-IP"),
				strings.SplitN(c.GetHeader("X-Forwarded-For"), ",", 2)[0],
			)
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}

func firstValidIP(candidates ...string) string {
	for _, v := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
