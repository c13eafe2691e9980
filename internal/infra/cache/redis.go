package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client *redis.Client
}

func NewRedisClient(url string, poolSize int) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opt.PoolSize = poolSize

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewRedisCache shares positive decisions across authorizer instances. The
// redis key TTL matches the entry TTL, so entries vanish from redis at the
// same moment ExpiresAt passes.
func NewRedisCache(client *redis.Client) DecisionCache {
	return &redisCache{client: client}
}

func (r *redisCache) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	val, err := r.client.Get(ctx, redisKey(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached decision: %w", err)
	}

	return &entry, nil
}

func (r *redisCache) Put(ctx context.Context, fingerprint string, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cached decision: %w", err)
	}

	if err := r.client.Set(ctx, redisKey(fingerprint), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set redis cache: %w", err)
	}

	return nil
}

func redisKey(fingerprint string) string {
	return fmt.Sprintf("authz:decision:%s", fingerprint)
}
