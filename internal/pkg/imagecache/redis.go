package imagecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "passport:image:"

// RedisTier stores handles in Redis so several instances share downloads.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTier connects to url. An empty url returns nil, nil (tier disabled).
func NewRedisTier(ctx context.Context, url string, ttl time.Duration) (*RedisTier, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisTier{client: client, ttl: ttl}, nil
}

func (t *RedisTier) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := t.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (t *RedisTier) Set(ctx context.Context, key, value string) error {
	return t.client.Set(ctx, redisKeyPrefix+key, value, t.ttl).Err()
}

func (t *RedisTier) Close() error {
	return t.client.Close()
}
