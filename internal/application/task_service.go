package application

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	repo "github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/metrics"
	"github.com/oksasatya/go-task-management-api/pkg/validation"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

func init() {
	validation.Var("taskstatus", func(fl validator.FieldLevel) bool {
		_, ok := entity.ParseTaskStatus(fl.Field().String())
		return ok
	}, "must be one of: todo, in-progress, done (or pending, in_progress, completed)")
	validation.Var("taskpriority", func(fl validator.FieldLevel) bool {
		_, ok := entity.ParseTaskPriority(fl.Field().String())
		return ok
	}, "must be one of: low, medium, high")
}

// TaskService implements owner-scoped task operations.
// Every read or write checks existence first (404) and ownership second (403).
type TaskService struct {
	Tasks   repo.TaskRepository
	Index   TaskIndex
	Metrics metrics.Recorder
	Logger  *logrus.Logger
}

func NewTaskService(tasks repo.TaskRepository, logger *logrus.Logger) *TaskService {
	return &TaskService{Tasks: tasks, Metrics: metrics.Nop{}, Logger: logger}
}

type CreateTaskInput struct {
	Title       string   `json:"title" validate:"notblank,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Status      string   `json:"status" validate:"omitempty,taskstatus"`
	Priority    string   `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     *string  `json:"dueDate" validate:"omitnil,isodate"`
	Assignee    string   `json:"assignee"`
	Labels      []string `json:"labels"`
}

// UpdateTaskInput carries a partial update. Nil fields are left unchanged;
// an empty dueDate clears it and an empty labels array removes all labels.
type UpdateTaskInput struct {
	Title       *string  `json:"title" validate:"omitnil,notblank,max=100"`
	Description *string  `json:"description" validate:"omitnil,max=500"`
	Status      *string  `json:"status" validate:"omitnil,taskstatus"`
	Priority    *string  `json:"priority" validate:"omitnil,taskpriority"`
	DueDate     *string  `json:"dueDate" validate:"omitnil,isodate"`
	Assignee    *string  `json:"assignee"`
	Labels      []string `json:"labels"`
}

// TaskQuery holds the optional list filters as received from the client.
type TaskQuery struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
}

func (s *TaskService) List(ctx context.Context, ownerID string, q TaskQuery) ([]*entity.Task, error) {
	var f repo.TaskFilter
	fields := map[string]string{}
	if q.Status != "" {
		st, ok := entity.ParseTaskStatus(q.Status)
		if !ok {
			fields["status"] = "must be one of: todo, in-progress, done (or pending, in_progress, completed)"
		}
		f.Status = st
	}
	if q.Priority != "" {
		p, ok := entity.ParseTaskPriority(q.Priority)
		if !ok {
			fields["priority"] = "must be one of: low, medium, high"
		}
		f.Priority = p
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}
	return s.Tasks.ListByOwner(ctx, ownerID, f)
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*entity.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Assignee = strings.TrimSpace(in.Assignee)
	in.Labels = trimAll(in.Labels)
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) == "" {
		in.DueDate = nil
	}
	if fields := validation.Struct(in); fields != nil {
		return nil, NewValidationError(fields)
	}

	t := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      entity.StatusTodo,
		Priority:    entity.PriorityMedium,
		Assignee:    in.Assignee,
		Labels:      in.Labels,
		CreatedBy:   ownerID,
	}
	if in.Status != "" {
		t.Status, _ = entity.ParseTaskStatus(in.Status)
	}
	if in.Priority != "" {
		t.Priority, _ = entity.ParseTaskPriority(in.Priority)
	}
	if in.DueDate != nil {
		d, _ := validation.ParseDate(*in.DueDate)
		t.DueDate = &d
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}

	if err := s.Tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.recorder().RecordTaskCreated()
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*entity.Task, error) {
	return s.owned(ctx, ownerID, taskID)
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, in UpdateTaskInput) (*entity.Task, error) {
	in.Title = trimPtr(in.Title)
	in.Description = trimPtr(in.Description)
	in.Assignee = trimPtr(in.Assignee)
	in.Labels = trimAll(in.Labels)
	// an empty dueDate clears the date and is not a date to validate
	clearDue := in.DueDate != nil && strings.TrimSpace(*in.DueDate) == ""
	if clearDue {
		in.DueDate = nil
	}
	if fields := validation.Struct(in); fields != nil {
		return nil, NewValidationError(fields)
	}

	t, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status, _ = entity.ParseTaskStatus(*in.Status)
	}
	if in.Priority != nil {
		t.Priority, _ = entity.ParseTaskPriority(*in.Priority)
	}
	switch {
	case clearDue:
		t.DueDate = nil
	case in.DueDate != nil:
		d, _ := validation.ParseDate(*in.DueDate)
		t.DueDate = &d
	}
	if in.Assignee != nil {
		t.Assignee = *in.Assignee
	}
	if in.Labels != nil {
		t.Labels = in.Labels
	}

	if err := s.Tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	t, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return err
	}
	if err := s.Tasks.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	s.recorder().RecordTaskDeleted()
	if s.Index != nil {
		if err := s.Index.Delete(ctx, t.ID); err != nil {
			s.warn(err, "search index delete failed", t.ID)
		}
	}
	return nil
}

// Stats counts the caller's tasks by status and priority.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (*entity.TaskStats, error) {
	return s.Tasks.CountByOwner(ctx, ownerID)
}

// Search looks q up in the search index and falls back to the database
// when no index is configured or the index request fails.
func (s *TaskService) Search(ctx context.Context, ownerID, q string, limit int) ([]*entity.Task, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, NewValidationError(map[string]string{"q": "is required"})
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.Index != nil {
		tasks, err := s.Index.Search(ctx, ownerID, q, limit)
		if err == nil {
			s.recorder().RecordSearch("elasticsearch")
			return tasks, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", ownerID).Warn("search index query failed, using database")
		}
	}

	s.recorder().RecordSearch("postgres")
	return s.Tasks.SearchByOwner(ctx, ownerID, q, limit)
}

func (s *TaskService) owned(ctx context.Context, ownerID, taskID string) (*entity.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, ErrTaskNotFound
	}
	t, err := s.Tasks.GetByID(ctx, taskID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	if !t.OwnedBy(ownerID) {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *TaskService) index(ctx context.Context, t *entity.Task) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, t); err != nil {
		s.warn(err, "search index update failed", t.ID)
	}
}

func (s *TaskService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *TaskService) warn(err error, msg, taskID string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("task_id", taskID).Warn(msg)
	}
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
