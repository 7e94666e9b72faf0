package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/config"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/metrics"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Redis, Elasticsearch, RabbitMQ and metrics are optional and stay nil when disabled.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	metricsRegistry  *prometheus.Registry
	metricsCollector *metrics.Collector
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

// SetMetrics stores the Prometheus registry and the collector registered on it.
func SetMetrics(reg *prometheus.Registry, c *metrics.Collector) {
	metricsRegistry, metricsCollector = reg, c
}
func GetMetricsRegistry() *prometheus.Registry { return metricsRegistry }
func GetMetricsCollector() *metrics.Collector  { return metricsCollector }
