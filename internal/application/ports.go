package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
)

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, time.Time, error)
}

// JobPublisher puts a JSON job on the email queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// TaskIndex is the full-text search side of task storage.
type TaskIndex interface {
	Index(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
	Search(ctx context.Context, ownerID, q string, limit int) ([]*entity.Task, error)
}

// UserCache holds user profiles for the authentication lookup.
type UserCache interface {
	Get(ctx context.Context, userID string) (*entity.User, bool, error)
	Set(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, userID string) error
}
