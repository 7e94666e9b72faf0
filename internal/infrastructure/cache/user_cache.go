package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
)

// UserCache stores user profiles (without password hashes) in Redis.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

func (c *UserCache) Get(ctx context.Context, userID string) (*entity.User, bool, error) {
	var u entity.User
	found, err := helpers.RedisGetJSON(ctx, c.rdb, profileKey(userID), &u)
	if err != nil || !found {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *UserCache) Set(ctx context.Context, u *entity.User) error {
	return helpers.RedisSetJSON(ctx, c.rdb, profileKey(u.ID), u, c.ttl)
}

func (c *UserCache) Delete(ctx context.Context, userID string) error {
	return helpers.RedisDel(ctx, c.rdb, profileKey(userID))
}
