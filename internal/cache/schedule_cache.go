// Package cache provides a Redis-backed read-through cache for schedule
// queries. The cache is best effort: every Redis failure degrades to a miss
// so the scheduler keeps working when Redis is down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/classroom-scheduler/internal/application"
)

const generationKey = "schedules:generation"

// ScheduleCache caches by-date schedule listings in Redis. Invalidation
// bumps a generation counter instead of scanning for keys, so stale entries
// simply age out via TTL.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewScheduleCache constructs a cache around an existing Redis client.
func NewScheduleCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ScheduleCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleCache{client: client, ttl: ttl, logger: logger}
}

// GetByDate returns the cached listing for a date, reporting a miss on any
// Redis or decoding failure.
func (c *ScheduleCache) GetByDate(ctx context.Context, date time.Time) ([]application.ScheduleDetail, bool) {
	key, err := c.dateKey(ctx, date)
	if err != nil {
		c.logMiss(ctx, "generation lookup failed", err)
		return nil, false
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logMiss(ctx, "cache read failed", err)
		}
		return nil, false
	}

	var details []application.ScheduleDetail
	if err := json.Unmarshal(payload, &details); err != nil {
		c.logMiss(ctx, "cache entry corrupt", err)
		return nil, false
	}
	return details, true
}

// StoreByDate writes the listing for a date with the configured TTL.
func (c *ScheduleCache) StoreByDate(ctx context.Context, date time.Time, details []application.ScheduleDetail) {
	key, err := c.dateKey(ctx, date)
	if err != nil {
		c.logMiss(ctx, "generation lookup failed", err)
		return
	}

	payload, err := json.Marshal(details)
	if err != nil {
		c.logMiss(ctx, "cache encode failed", err)
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logMiss(ctx, "cache write failed", err)
	}
}

// Invalidate advances the generation counter, orphaning every cached
// listing at once.
func (c *ScheduleCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logMiss(ctx, "cache invalidation failed", err)
	}
}

func (c *ScheduleCache) dateKey(ctx context.Context, date time.Time) (string, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("schedules:g%d:date:%s", generation, date.Format("2006-01-02")), nil
}

func (c *ScheduleCache) logMiss(ctx context.Context, msg string, err error) {
	c.logger.DebugContext(ctx, msg, "error", err)
}
