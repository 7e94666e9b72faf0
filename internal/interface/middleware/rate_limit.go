package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-task-management-api/pkg/response"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP within the named bucket.
func KeyByIP(bucket string) KeyFunc {
	return func(c *gin.Context) string {
		return "rl:" + bucket + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers by id and anonymous ones by IP.
func KeyByUserID(bucket string) KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "rl:" + bucket + ":user:" + uid
		}
		return "rl:" + bucket + ":ip:" + ipFromCtx(c)
	}
}

// atomic INCR + PEXPIRE on first hit; returns {count, pttl}
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimitOptions configures one fixed-window limiter.
type RateLimitOptions struct {
	Max     int
	Window  time.Duration
	Key     KeyFunc
	Allow   AllowFunc
	Message string
}

// RateLimit is a fixed-window limiter backed by Redis.
// It is a no-op without Redis and fails open when Redis errors.
func RateLimit(rdb *redis.Client, opt RateLimitOptions) gin.HandlerFunc {
	if rdb == nil || opt.Max <= 0 || opt.Window <= 0 || opt.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if opt.Message == "" {
		opt.Message = "Too many requests from this IP, please try again later."
	}
	return func(c *gin.Context) {
		if opt.Allow != nil && opt.Allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		res, err := incrExpireScript.Run(c.Request.Context(), rdb, []string{opt.Key(c)}, opt.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, pttl := int(res[0]), res[1]
		resetSec := 0
		if pttl > 0 {
			resetSec = int((time.Duration(pttl)*time.Millisecond + time.Second - 1) / time.Second)
		}

		remaining := opt.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(opt.Max))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(resetSec))

		if count > opt.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, opt.Message, nil)
			return
		}
		c.Next()
	}
}
