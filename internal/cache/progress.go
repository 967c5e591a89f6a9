// Package cache holds derived progress snapshots in Redis so the dashboard
// doesn't recompute them on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pathworks/curriculum-engine/internal/curriculum"
)

// ProgressCache implements curriculum.Cache over Redis
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache connects to Redis and verifies connectivity
func NewProgressCache(address, password string, db int, ttl time.Duration) (*ProgressCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ProgressCache{client: client, ttl: ttl}, nil
}

func progressKey(curriculumID string) string {
	return fmt.Sprintf("progress:%s", curriculumID)
}

// GetProgress returns the cached snapshot, or nil on a miss
func (c *ProgressCache) GetProgress(ctx context.Context, curriculumID string) (*curriculum.Progress, error) {
	raw, err := c.client.Get(ctx, progressKey(curriculumID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress cache: %w", err)
	}

	var p curriculum.Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		// Stale or corrupt entry; treat as a miss
		return nil, nil
	}
	return &p, nil
}

// SetProgress stores a snapshot with the configured TTL
func (c *ProgressCache) SetProgress(ctx context.Context, curriculumID string, p *curriculum.Progress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := c.client.Set(ctx, progressKey(curriculumID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write progress cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a curriculum
func (c *ProgressCache) Invalidate(ctx context.Context, curriculumID string) error {
	if err := c.client.Del(ctx, progressKey(curriculumID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate progress cache: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity
func (c *ProgressCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *ProgressCache) Close() error {
	return c.client.Close()
}
