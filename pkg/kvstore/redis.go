package kvstore

import (
	"context"

	"schedule-visualizer/backend/pkg/redis"
)

// Redis 基于 Redis 的存储
type Redis struct {
	client *redis.Client
}

// NewRedis 创建 Redis 存储
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	return r.client.Get(ctx, key)
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Delete(ctx, key)
}
