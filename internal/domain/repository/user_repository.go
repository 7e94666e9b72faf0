package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// DeleteWithTasks removes the user and every task it owns atomically.
	DeleteWithTasks(ctx context.Context, id string) (int64, error)
}
