package router

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/config"
	"github.com/oksasatya/go-task-management-api/internal/application"
	"github.com/oksasatya/go-task-management-api/internal/container"
	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/cache"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/metrics"
	pginfra "github.com/oksasatya/go-task-management-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-task-management-api/internal/interface/http"
	"github.com/oksasatya/go-task-management-api/internal/interface/middleware"
	"github.com/oksasatya/go-task-management-api/internal/router/modules"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
)

// Deps is everything the HTTP layer needs. Optional collaborators stay nil.
type Deps struct {
	Config *config.Config
	Logger *logrus.Logger
	Users  repository.UserRepository
	Tasks  repository.TaskRepository
	Tokens *helpers.JWTManager
	Redis  *redis.Client

	Cache application.UserCache
	Index application.TaskIndex
	Jobs  application.JobPublisher

	Metrics        metrics.Recorder
	MetricsHandler http.Handler
}

// DepsFromContainer builds Deps from the singletons set up in main.
func DepsFromContainer() Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	d := Deps{
		Config:  cfg,
		Logger:  container.GetLogger(),
		Users:   pginfra.NewUserRepository(pool),
		Tasks:   pginfra.NewTaskRepository(pool),
		Tokens:  container.GetJWT(),
		Redis:   container.GetRedis(),
		Metrics: metrics.Nop{},
	}
	// interfaces are only assigned from non-nil pointers
	if rdb := container.GetRedis(); rdb != nil {
		d.Cache = cache.NewUserCache(rdb, cfg.UserCacheTTL)
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewTaskIndex(es, cfg.ESTasksIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		d.Jobs = pub
	}
	if c := container.GetMetricsCollector(); c != nil {
		d.Metrics = c
		if cfg.PrometheusEnabled {
			d.MetricsHandler = metrics.Handler(container.GetMetricsRegistry())
		}
	}
	return d
}

// InitModules builds services and handlers from d and adds every module to r.
func InitModules(r *Registry, d Deps) {
	cfg := d.Config
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}

	authSvc := application.NewAuthService(d.Users, d.Tokens, d.Logger)
	authSvc.Cache = d.Cache
	authSvc.Jobs = d.Jobs
	authSvc.Metrics = d.Metrics
	authSvc.AppName = cfg.AppName

	taskSvc := application.NewTaskService(d.Tasks, d.Logger)
	taskSvc.Index = d.Index
	taskSvc.Metrics = d.Metrics

	adminSvc := application.NewAdminService(d.Users, d.Tasks, d.Logger)
	adminSvc.Auth = authSvc
	adminSvc.Index = d.Index
	adminSvc.Jobs = d.Jobs
	adminSvc.Metrics = d.Metrics
	adminSvc.AppName = cfg.AppName

	auth := middleware.Auth(authSvc, d.Tokens)

	// RateLimit is a pass-through without Redis
	rdb := d.Redis
	if !cfg.RateLimitEnabled {
		rdb = nil
	}
	var allowPrivate middleware.AllowFunc
	if cfg.RateLimitAllowPrivate {
		allowPrivate = middleware.AllowPrivateIP()
	}
	r.Use(middleware.RateLimit(rdb, middleware.RateLimitOptions{
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
		Key:    middleware.KeyByIP("api"),
		Allow:  middleware.AnyOf(allowPrivate, middleware.AllowPaths("/api/debug/vars")),
	}))
	authLimiter := middleware.RateLimit(rdb, middleware.RateLimitOptions{
		Max:     cfg.AuthRateLimitMax,
		Window:  cfg.RateLimitWindow,
		Key:     middleware.KeyByIP("auth"),
		Allow:   allowPrivate,
		Message: "Too many authentication attempts, please try again later.",
	})

	r.AddRoot(modules.NewHealthModule(d.MetricsHandler))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc), auth, authLimiter))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(taskSvc, entity.LabelsFor(cfg.TaskStatusLabels)), auth))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(adminSvc), auth))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(map[string]any{
			"app":            cfg.AppName,
			"env":            cfg.Env,
			"status_labels":  cfg.TaskStatusLabels,
			"search_backend": searchBackend(d.Index),
			"user_cache":     d.Cache != nil,
			"mail_queue":     d.Jobs != nil,
		}))
	}
}

func searchBackend(idx application.TaskIndex) string {
	if idx != nil {
		return "elasticsearch"
	}
	return "postgres"
}
