// Package metrics exposes Prometheus counters for HTTP traffic and task/user activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware report to.
type Recorder interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
	RecordTaskCreated()
	RecordTaskDeleted()
	RecordUserRegistered()
	RecordLoginFailed()
	RecordUserDeleted(tasks int64)
	RecordSearch(backend string)
}

type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	tasksCreated   prometheus.Counter
	tasksDeleted   prometheus.Counter
	usersCreated   prometheus.Counter
	loginFailures  prometheus.Counter
	usersDeleted   prometheus.Counter
	cascadeDeleted prometheus.Counter
	searches       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskapi_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskapi_tasks_created_total",
			Help: "Tasks created.",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskapi_tasks_deleted_total",
			Help: "Tasks deleted by their owner.",
		}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskapi_users_registered_total",
			Help: "Accounts registered.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskapi_login_failures_total",
			Help: "Rejected login attempts.",
		}),
		usersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskapi_users_deleted_total",
			Help: "Accounts removed by admins.",
		}),
		cascadeDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskapi_tasks_cascade_deleted_total",
			Help: "Tasks removed together with their owner.",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskapi_task_searches_total",
			Help: "Task searches by backend.",
		}, []string{"backend"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.tasksCreated,
		c.tasksDeleted,
		c.usersCreated,
		c.loginFailures,
		c.usersDeleted,
		c.cascadeDeleted,
		c.searches,
	)
	return c
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordTaskCreated()    { c.tasksCreated.Inc() }
func (c *Collector) RecordTaskDeleted()    { c.tasksDeleted.Inc() }
func (c *Collector) RecordUserRegistered() { c.usersCreated.Inc() }
func (c *Collector) RecordLoginFailed()    { c.loginFailures.Inc() }

func (c *Collector) RecordUserDeleted(tasks int64) {
	c.usersDeleted.Inc()
	c.cascadeDeleted.Add(float64(tasks))
}

func (c *Collector) RecordSearch(backend string) {
	c.searches.WithLabelValues(backend).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveHTTP(string, string, int, time.Duration) {}
func (Nop) RecordTaskCreated()                              {}
func (Nop) RecordTaskDeleted()                              {}
func (Nop) RecordUserRegistered()                           {}
func (Nop) RecordLoginFailed()                              {}
func (Nop) RecordUserDeleted(int64)                         {}
func (Nop) RecordSearch(string)                             {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
