package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/accordfamily/accord-backend/pkg/config"
)

const policyTextKey = "policy:active:text"

// PolicyCache caches the active court order text so the moderation path
// does not hit the database for every message and utterance.
type PolicyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewPolicyCache creates a policy cache with the given TTL
func NewPolicyCache(client *redis.Client, ttl time.Duration) *PolicyCache {
	return &PolicyCache{client: client, ttl: ttl}
}

// Get returns the cached policy text. The second return value is false on a miss.
func (c *PolicyCache) Get(ctx context.Context) (string, bool, error) {
	text, err := c.client.Get(ctx, policyTextKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Set stores the policy text
func (c *PolicyCache) Set(ctx context.Context, text string) error {
	return c.client.Set(ctx, policyTextKey, text, c.ttl).Err()
}

// Invalidate drops the cached policy text
func (c *PolicyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, policyTextKey).Err()
}
