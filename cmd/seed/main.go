package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/config"
	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/internal/domain/repository"
	pginfra "github.com/oksasatya/go-task-management-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
)

const demoPassword = "password123"

type seedTask struct {
	title, description string
	status             entity.TaskStatus
	priority           entity.TaskPriority
	due                string
}

var demoUsers = []struct {
	username, email string
	tasks           []seedTask
}{
	{"john.doe", "john.doe@example.com", []seedTask{
		{"Complete project documentation", "Write comprehensive documentation for the DevOps pipeline project", entity.StatusTodo, entity.PriorityHigh, "2024-12-31"},
		{"Review code changes", "Review pull requests from team members", entity.StatusInProgress, entity.PriorityMedium, "2024-12-15"},
		{"Set up monitoring", "Configure monitoring and alerting for production environment", entity.StatusDone, entity.PriorityHigh, ""},
	}},
	{"jane.smith", "jane.smith@example.com", []seedTask{
		{"Update CI/CD pipeline", "Add automated testing to the GitHub Actions workflow", entity.StatusTodo, entity.PriorityHigh, "2024-12-20"},
		{"Database optimization", "Optimize database queries and add indexes", entity.StatusInProgress, entity.PriorityMedium, ""},
		{"Security audit", "Perform security audit of the application", entity.StatusTodo, entity.PriorityHigh, "2025-01-10"},
	}},
	{"bob.wilson", "bob.wilson@example.com", []seedTask{
		{"Deploy to staging", "Deploy latest changes to staging environment", entity.StatusDone, entity.PriorityMedium, ""},
		{"Write unit tests", "Add unit tests for new API endpoints", entity.StatusInProgress, entity.PriorityLow, "2024-12-25"},
	}},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Hour)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	tasks := pginfra.NewTaskRepository(pool)

	admin, _, err := ensureUser(ctx, users, "admin", cfg.SeedAdminEmail, cfg.SeedAdminPassword, entity.RoleAdmin)
	if err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithFields(logrus.Fields{"id": admin.ID, "email": admin.Email}).Info("admin ready")

	var total int
	for _, du := range demoUsers {
		u, created, err := ensureUser(ctx, users, du.username, du.email, demoPassword, entity.RoleUser)
		if err != nil {
			logger.Fatalf("failed to seed %s: %v", du.email, err)
		}
		if !created {
			logger.WithField("email", u.Email).Info("user exists, skipping tasks")
			continue
		}
		for _, st := range du.tasks {
			t := &entity.Task{
				Title:       st.title,
				Description: st.description,
				Status:      st.status,
				Priority:    st.priority,
				Labels:      []string{},
				CreatedBy:   u.ID,
			}
			if st.due != "" {
				d, _ := time.Parse("2006-01-02", st.due)
				t.DueDate = &d
			}
			if err := tasks.Create(ctx, t); err != nil {
				logger.Fatalf("failed to seed task %q: %v", st.title, err)
			}
			total++
		}
		logger.WithFields(logrus.Fields{"email": u.Email, "tasks": len(du.tasks)}).Info("user seeded")
	}
	logger.WithFields(logrus.Fields{"users": len(demoUsers) + 1, "tasks": total, "password": demoPassword}).
		Info("database seeded")
}

// ensureUser returns the user with email, creating it when missing.
func ensureUser(ctx context.Context, users repository.UserRepository, username, email, password string, role entity.Role) (*entity.User, bool, error) {
	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{Username: username, Email: email, Password: hash, Role: role}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}
