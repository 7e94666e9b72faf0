package repository

import (
	"context"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
)

// TaskFilter narrows List results. Zero values mean no filtering.
type TaskFilter struct {
	Status   entity.TaskStatus
	Priority entity.TaskPriority
}

// TaskRepository defines task persistence. Ownership is enforced by callers.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	// ListByOwner returns the owner's tasks newest first.
	ListByOwner(ctx context.Context, ownerID string, f TaskFilter) ([]*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (*entity.TaskStats, error)
	SearchByOwner(ctx context.Context, ownerID, q string, limit int) ([]*entity.Task, error)
}
