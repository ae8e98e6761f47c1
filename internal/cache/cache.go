// Package cache keeps recently resolved document info close to the inspector.
package cache

import (
	"context"
	"errors"
	"time"

	"docinspect/internal/model"
)

var (
	// ErrCacheMiss is returned by Get when no entry exists for the id.
	ErrCacheMiss = errors.New("cache miss")
	// ErrInvalidEntry is returned by Get when the stored value cannot be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

const keyPrefix = "docinspect:info:"

// Key returns the cache key for a document id.
func Key(id string) string {
	return keyPrefix + id
}

// Cache stores DocumentInfo values by document id.
type Cache interface {
	Get(ctx context.Context, id string) (*model.DocumentInfo, error)
	Set(ctx context.Context, info *model.DocumentInfo, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Noop is used when no cache backend is configured. Every Get misses.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, string) (*model.DocumentInfo, error) { return nil, ErrCacheMiss }

func (Noop) Set(context.Context, *model.DocumentInfo, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }
