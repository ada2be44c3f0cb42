package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultDedupTTL = 24 * time.Hour

// dedupStore is the subset of the Redis client the deduper relies on.
type dedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// UpdateDeduper guards status update submission against client retries that
// reuse the same Idempotency-Key.
type UpdateDeduper struct {
	store  dedupStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewUpdateDeduper returns a deduper. A nil client disables deduplication.
func NewUpdateDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *UpdateDeduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &UpdateDeduper{ttl: ttl, logger: logger}
	if rdb != nil {
		d.store = rdb
	}
	return d
}

func dedupKey(taskID uint64, key string) string {
	return fmt.Sprintf("dedup:task_update:%d:%s", taskID, key)
}

func (d *UpdateDeduper) enabled(key string) bool {
	return d != nil && d.store != nil && key != ""
}

// AcquireOnce reports whether this is the first submission of key for the
// task. Redis failures allow the submission through.
func (d *UpdateDeduper) AcquireOnce(ctx context.Context, taskID uint64, key string) bool {
	if !d.enabled(key) {
		return true
	}

	redisKey := dedupKey(taskID, key)
	ok, err := d.store.SetNX(ctx, redisKey, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing update",
			zap.Uint64("task_id", taskID),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated task update",
			zap.Uint64("task_id", taskID),
			zap.String("dedup_key", redisKey),
		)
	}
	return ok
}

// Release drops a claimed key so a retry with the same key can go through.
// It is called when the update could not be stored after AcquireOnce.
func (d *UpdateDeduper) Release(ctx context.Context, taskID uint64, key string) {
	if !d.enabled(key) {
		return
	}

	if err := d.store.Del(ctx, dedupKey(taskID, key)).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.Uint64("task_id", taskID),
			zap.Error(err),
		)
	}
}
