package modules

import (
	"expvar"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var publishOnce sync.Once

// DebugModule exposes expvar at /api/debug/vars, including an "app" variable
// with the running configuration summary.
type DebugModule struct {
	Info map[string]any
}

func NewDebugModule(info map[string]any) *DebugModule {
	m := &DebugModule{Info: info}
	started := time.Now().UTC()
	publishOnce.Do(func() {
		expvar.Publish("app", expvar.Func(func() any {
			out := map[string]any{
				"started_at":     started.Format(time.RFC3339),
				"uptime_seconds": int64(time.Since(started).Seconds()),
			}
			for k, v := range m.Info {
				out[k] = v
			}
			return out
		}))
	})
	return m
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}
