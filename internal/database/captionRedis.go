package database

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisURLCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisURLCache(client *redis.Client, ttl time.Duration) URLCache {
	return &redisURLCache{client: client, ttl: ttl}
}

func (c *redisURLCache) GetURL(ctx context.Context, key string) (string, bool, error) {
	url, err := c.client.Get(ctx, "caption:"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return url, true, nil
}

func (c *redisURLCache) SetURL(ctx context.Context, key, url string) error {
	return c.client.Set(ctx, "caption:"+key, url, c.ttl).Err()
}
