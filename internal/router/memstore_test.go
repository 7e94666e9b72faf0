package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/internal/domain/repository"
)

// memStore backs both repositories in memory for end-to-end router tests.
type memStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
	tasks map[string]*entity.Task
	seq   int
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*entity.User{}, tasks: map[string]*entity.Task{}}
}

// tick keeps created_at strictly increasing so newest-first ordering is stable.
func (m *memStore) tick() time.Time {
	m.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.ID = uuid.NewString()
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) List(_ context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memUsers) DeleteWithTasks(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var n int64
	for tid, t := range m.tasks {
		if t.CreatedBy == id {
			delete(m.tasks, tid)
			n++
		}
	}
	delete(m.users, id)
	return n, nil
}

type memTasks struct{ *memStore }

func (m memTasks) Create(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = m.tick()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m memTasks) GetByID(_ context.Context, id string) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memTasks) ListByOwner(_ context.Context, ownerID string, f repository.TaskFilter) ([]*entity.Task, error) {
	return m.collect(func(t *entity.Task) bool {
		return t.CreatedBy == ownerID &&
			(f.Status == "" || t.Status == f.Status) &&
			(f.Priority == "" || t.Priority == f.Priority)
	}, 0), nil
}

func (m memTasks) Update(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return repository.ErrNotFound
	}
	t.UpdatedAt = m.tick()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m memTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m memTasks) CountByOwner(_ context.Context, ownerID string) (*entity.TaskStats, error) {
	stats := entity.NewTaskStats()
	for _, t := range m.collect(func(t *entity.Task) bool { return t.CreatedBy == ownerID }, 0) {
		stats.Add(t.Status, t.Priority, 1)
	}
	return stats, nil
}

func (m memTasks) SearchByOwner(_ context.Context, ownerID, q string, limit int) ([]*entity.Task, error) {
	q = strings.ToLower(q)
	return m.collect(func(t *entity.Task) bool {
		return t.CreatedBy == ownerID &&
			(strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q))
	}, limit), nil
}

func (m memTasks) collect(keep func(*entity.Task) bool, limit int) []*entity.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Task, 0)
	for _, t := range m.tasks {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var (
	_ repository.UserRepository = memUsers{}
	_ repository.TaskRepository = memTasks{}
)
