package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projecthub/submission-backend/internal/projects/domain"
)

const (
	statusKeyPrefix     = "projects:status:"     // projects:status:{user_firebase_uid}
	generationKeyPrefix = "projects:status_gen:" // bumped on every invalidation
	defaultTTL          = 30 * time.Second
	generationTTL       = 24 * time.Hour
)

// RedisStatusCache keeps recently computed status reports per user.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatusCache creates a status cache; ttl <= 0 falls back to 30s.
func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStatusCache{client: client, ttl: ttl}
}

// Get returns the cached report and whether it was present.
func (c *RedisStatusCache) Get(ctx context.Context, ownerID string) (*domain.StatusReport, bool, error) {
	data, err := c.client.Get(ctx, c.key(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get status report: %w", err)
	}

	var report domain.StatusReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal status report: %w", err)
	}
	return domain.NewStatusReport(report.Accepted, report.Rejected), true, nil
}

// Generation returns the owner's invalidation counter. A missing counter reads as zero.
func (c *RedisStatusCache) Generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(ownerID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get status generation: %w", err)
	}
	return gen, nil
}

// Set stores the report only while the owner's generation still equals gen.
// A report computed before an invalidation is dropped instead of cached.
func (c *RedisStatusCache) Set(ctx context.Context, ownerID string, gen int64, report *domain.StatusReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal status report: %w", err)
	}

	genKey := c.generationKey(ownerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(ownerID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to set status report: %w", err)
	}
	return nil
}

// Invalidate bumps the owner's generation and drops the cached report in one transaction.
func (c *RedisStatusCache) Invalidate(ctx context.Context, ownerID string) error {
	genKey := c.generationKey(ownerID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, c.key(ownerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate status report: %w", err)
	}
	return nil
}

func (c *RedisStatusCache) key(ownerID string) string {
	return statusKeyPrefix + ownerID
}

func (c *RedisStatusCache) generationKey(ownerID string) string {
	return generationKeyPrefix + ownerID
}

var errStaleGeneration = errors.New("status generation changed")
