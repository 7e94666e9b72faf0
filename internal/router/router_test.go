package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-task-management-api/config"
	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/metrics"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
	"github.com/oksasatya/go-task-management-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	helpers.PasswordCost = bcrypt.MinCost
	validation.Init()
	os.Exit(m.Run())
}

type apiEnvelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	store  *memStore
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:          "Task Manager",
		Env:              "test",
		CORSOrigin:       "*",
		RateLimitWindow:  15 * time.Minute,
		RateLimitMax:     100,
		AuthRateLimitMax: 5,
		TaskStatusLabels: "standard",
	}
}

func newTestAPI(t *testing.T, mutate func(*Deps)) *testAPI {
	store := newMemStore()
	d := Deps{
		Config:  testConfig(),
		Logger:  helpers.NopLogger(),
		Users:   memUsers{store},
		Tasks:   memTasks{store},
		Tokens:  helpers.NewJWTManager("test-secret", time.Hour),
		Metrics: metrics.Nop{},
	}
	if mutate != nil {
		mutate(&d)
	}
	return &testAPI{t: t, engine: New(d), store: store}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	a.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env apiEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// register creates a user and returns its token and id.
func (a *testAPI) register(username string) (string, string) {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &res))
	return res.Token, res.User.ID
}

func (a *testAPI) createAdmin(email, password string) {
	a.t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(a.t, err)
	require.NoError(a.t, memUsers{a.store}.Create(context.Background(), &entity.User{
		Username: "admin", Email: email, Password: hash, Role: entity.RoleAdmin,
	}))
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &res))
	return res.Token
}

type taskBody struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
	Labels   []string   `json:"labels"`
}

func TestTasks_OwnerIsolation(t *testing.T) {
	api := newTestAPI(t, nil)
	tokenA, _ := api.register("alice")
	tokenB, _ := api.register("bob")

	w, env := api.do(http.MethodPost, "/api/tasks", tokenA, map[string]any{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created taskBody
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "todo", created.Status)
	assert.Equal(t, "medium", created.Priority)
	assert.Equal(t, []string{}, created.Labels)

	w, _ = api.do(http.MethodPost, "/api/tasks", tokenB, map[string]any{"title": "Walk dog", "priority": "high"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = api.do(http.MethodGet, "/api/tasks", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
	var listed []taskBody
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	w, env = api.do(http.MethodGet, "/api/tasks/"+created.ID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)

	w, _ = api.do(http.MethodPatch, "/api/tasks/"+created.ID, tokenB, map[string]any{"status": "done"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodDelete, "/api/tasks/"+created.ID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodGet, "/api/tasks/00000000-0000-4000-8000-000000000000", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", env.Message)
	w, _ = api.do(http.MethodGet, "/api/tasks/abc", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasks_UpdateStatsAndDelete(t *testing.T) {
	api := newTestAPI(t, nil)
	token, _ := api.register("carol")

	_, env := api.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Ship release", "labels": []string{"release"}, "dueDate": "2025-03-01",
	})
	var task taskBody
	require.NoError(t, json.Unmarshal(env.Data, &task))

	w, env := api.do(http.MethodPatch, "/api/tasks/"+task.ID, token, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated taskBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "done", updated.Status)
	assert.Equal(t, "Ship release", updated.Title)

	w, env = api.do(http.MethodGet, "/api/tasks?status=done", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *env.Count)

	w, env = api.do(http.MethodGet, "/api/tasks/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats entity.TaskStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Completed)

	w, env = api.do(http.MethodGet, "/api/tasks/search?q=ship", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *env.Count)

	w, env = api.do(http.MethodDelete, "/api/tasks/"+task.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task deleted", env.Message)
	assert.JSONEq(t, `{}`, string(env.Data))

	w, _ = api.do(http.MethodGet, "/api/tasks/"+task.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasks_Validation(t *testing.T) {
	api := newTestAPI(t, nil)
	token, _ := api.register("dave")

	w, _ := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": strings.Repeat("a", 100)})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": strings.Repeat("a", 101)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "title", env.Errors[0].Field)

	w, env = api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "x", "owner": "someone"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "owner", env.Errors[0].Field)

	w, _ = api.do(http.MethodPost, "/api/tasks", token, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.do(http.MethodGet, "/api/tasks?status=archived", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "status", env.Errors[0].Field)

	w, _ = api.do(http.MethodGet, "/api/tasks/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Flow(t *testing.T) {
	api := newTestAPI(t, nil)
	token, id := api.register("erin")

	w, env := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "erin2", "email": "erin@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Duplicate field value entered", env.Message)

	w, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "erin@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", env.Message)

	w, env = api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, id, me["id"])
	assert.NotContains(t, me, "password")

	w, env = api.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", env.Message)

	w, env = api.do(http.MethodGet, "/api/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", env.Message)
}

func TestAdmin_Routes(t *testing.T) {
	api := newTestAPI(t, nil)
	userToken, userID := api.register("frank")
	api.createAdmin("root@example.com", "rootpass")
	adminToken := api.login("root@example.com", "rootpass")

	_, _ = api.do(http.MethodPost, "/api/tasks", userToken, map[string]any{"title": "one"})
	_, _ = api.do(http.MethodPost, "/api/tasks", userToken, map[string]any{"title": "two", "status": "in-progress"})

	w, env := api.do(http.MethodGet, "/api/v1/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", env.Message)

	w, env = api.do(http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, *env.Count)

	w, env = api.do(http.MethodGet, "/api/v1/admin/users/"+userID+"/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 2, stats["total_tasks"])
	assert.EqualValues(t, 1, stats["in_progress"])

	w, _ = api.do(http.MethodDelete, "/api/v1/admin/users/"+userID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodGet, "/api/auth/me", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, user not found", env.Message)
	assert.Empty(t, api.store.tasks)

	w, _ = api.do(http.MethodDelete, "/api/v1/admin/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndNotFound(t *testing.T) {
	api := newTestAPI(t, nil)

	w, env := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API is running", env.Message)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w, env = api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", env.Message)

	w, _ = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	api := newTestAPI(t, func(d *Deps) {
		d.Metrics = metrics.NewCollector(reg)
		d.MetricsHandler = metrics.Handler(reg)
	})
	api.register("gina")

	w, _ := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `taskapi_http_requests_total{method="POST",route="/api/auth/register",status_code="201"} 1`)
	assert.Contains(t, body, "taskapi_users_registered_total 1")
}

func TestAuthRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	api := newTestAPI(t, func(d *Deps) {
		d.Redis = rdb
		d.Config.RateLimitEnabled = true
		d.Config.AuthRateLimitMax = 2
	})

	creds := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < 2; i++ {
		w, _ := api.do(http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, env := api.do(http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many authentication attempts, please try again later.", env.Message)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w, _ = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDebugVars(t *testing.T) {
	api := newTestAPI(t, func(d *Deps) { d.Config.DebugMetricsEnabled = true })

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var vars map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vars))
	var app map[string]any
	require.NoError(t, json.Unmarshal(vars["app"], &app))
	assert.Equal(t, "postgres", app["search_backend"])
	assert.Equal(t, "standard", app["status_labels"])
}

func TestTasks_PatchClearsDueDate(t *testing.T) {
	api := newTestAPI(t, nil)
	token, _ := api.register("hank")

	_, env := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "Dentist", "dueDate": "2025-05-01"})
	var task taskBody
	require.NoError(t, json.Unmarshal(env.Data, &task))
	require.NotNil(t, task.DueDate)

	w, env := api.do(http.MethodPatch, "/api/tasks/"+task.ID, token, map[string]any{"dueDate": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated taskBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Dentist", updated.Title)

	w, env = api.do(http.MethodPatch, "/api/tasks/"+task.ID, token, map[string]any{"dueDate": "tomorrow-ish"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "dueDate", env.Errors[0].Field)
}

func TestTasks_LegacyStatusLabels(t *testing.T) {
	api := newTestAPI(t, func(d *Deps) { d.Config.TaskStatusLabels = "legacy" })
	token, _ := api.register("ivy")

	w, env := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, w.Code)
	var task taskBody
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "pending", task.Status)
	assert.Equal(t, "medium", task.Priority)

	_, env = api.do(http.MethodPatch, "/api/tasks/"+task.ID, token, map[string]any{"status": "in-progress"})
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "in_progress", task.Status)

	w, env = api.do(http.MethodGet, "/api/tasks?status=in_progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *env.Count)
}

// brokenTasks fails every lookup as if the database were unreachable.
type brokenTasks struct{ memTasks }

var errStorageDown = errors.New("connection refused")

func (brokenTasks) GetByID(context.Context, string) (*entity.Task, error) {
	return nil, errStorageDown
}

var _ repository.TaskRepository = brokenTasks{}

func TestTasks_StorageFailureIsServerError(t *testing.T) {
	api := newTestAPI(t, func(d *Deps) { d.Tasks = brokenTasks{memTasks{newMemStore()}} })
	token, _ := api.register("jack")

	w, env := api.do(http.MethodGet, "/api/tasks/00000000-0000-4000-8000-000000000001", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Server Error", env.Message)
	assert.Contains(t, w.Body.String(), "connection refused")

	prod := newTestAPI(t, func(d *Deps) {
		d.Tasks = brokenTasks{memTasks{newMemStore()}}
		d.Config.Env = "production"
	})
	token, _ = prod.register("jack")
	w, _ = prod.do(http.MethodGet, "/api/tasks/00000000-0000-4000-8000-000000000001", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
