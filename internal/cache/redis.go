package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"docinspect/internal/config"
	"docinspect/internal/model"
)

// Redis stores document info as JSON strings with a TTL.
type Redis struct {
	inner *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisFromClient(client), nil
}

// NewRedisFromClient wraps an existing go-redis client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{inner: client}
}

func (r *Redis) Get(ctx context.Context, id string) (*model.DocumentInfo, error) {
	raw, err := r.inner.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var info model.DocumentInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &info, nil
}

func (r *Redis) Set(ctx context.Context, info *model.DocumentInfo, ttl time.Duration) error {
	if info == nil {
		return nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode info: %w", err)
	}
	return r.inner.Set(ctx, Key(info.ID), raw, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.inner.Del(ctx, Key(id)).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	if r == nil || r.inner == nil {
		return nil
	}
	return r.inner.Close()
}
