package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	repo "github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/metrics"
	"github.com/oksasatya/go-task-management-api/pkg/mailer"
	"github.com/oksasatya/go-task-management-api/pkg/mailer/templates"
)

// AdminService backs the admin dashboard. Callers must already hold the admin role.
type AdminService struct {
	Users   repo.UserRepository
	Tasks   repo.TaskRepository
	Auth    *AuthService
	Index   TaskIndex
	Jobs    JobPublisher
	Metrics metrics.Recorder
	Logger  *logrus.Logger
	AppName string
	now     func() time.Time
}

func NewAdminService(users repo.UserRepository, tasks repo.TaskRepository, logger *logrus.Logger) *AdminService {
	return &AdminService{Users: users, Tasks: tasks, Metrics: metrics.Nop{}, Logger: logger, now: time.Now}
}

// UserStats is the per-user summary shown on the dashboard.
type UserStats struct {
	User       *entity.User `json:"user"`
	TotalTasks int          `json:"total_tasks"`
	Pending    int          `json:"pending"`
	InProgress int          `json:"in_progress"`
	Completed  int          `json:"completed"`
}

// ListUsers returns every account, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.Users.List(ctx)
}

func (s *AdminService) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	st, err := s.Tasks.CountByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &UserStats{
		User:       u,
		TotalTasks: st.Total,
		Pending:    st.Pending,
		InProgress: st.InProgress,
		Completed:  st.Completed,
	}, nil
}

// DeleteUser removes userID and all of its tasks. Admins cannot delete
// themselves or other admins.
func (s *AdminService) DeleteUser(ctx context.Context, callerID, userID string) error {
	if callerID == userID {
		return ErrCannotDeleteSelf
	}
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return ErrCannotDeleteAdmin
	}

	removed, err := s.Users.DeleteWithTasks(ctx, u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	s.recorder().RecordUserDeleted(removed)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "by": callerID, "tasks": removed}).Info("user deleted")
	}

	if s.Auth != nil {
		s.Auth.Evict(ctx, u.ID)
	}
	if s.Index != nil {
		if err := s.Index.DeleteByOwner(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index cleanup failed")
		}
	}
	publishEmail(ctx, s.Jobs, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: templates.AccountDeleted,
		Data: templates.NewAccountDeletedData(u.Username, u.Email,
			templates.WithAppName(s.AppName),
			templates.WithTime(s.clock()),
			templates.WithTaskCount(removed)),
	})
	return nil
}

func (s *AdminService) lookup(ctx context.Context, userID string) (*entity.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AdminService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *AdminService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
