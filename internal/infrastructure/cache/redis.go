package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthsure/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")

	return client, nil
}

// JSONCache stores values as JSON documents in Redis.
type JSONCache struct {
	client *redis.Client
}

func NewJSONCache(client *redis.Client) *JSONCache {
	return &JSONCache{client: client}
}

// Get decodes the value under key into result. A missing key reports false
// without error.
func (c *JSONCache) Get(ctx context.Context, key string, result any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *JSONCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *JSONCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
