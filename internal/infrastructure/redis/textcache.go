package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

const textKeyPrefix = "doctext:"

// CachedText returns previously extracted document text, if any.
func (c *Client) CachedText(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.Native == nil {
		return "", false, nil
	}
	val, err := c.Native.Get(ctx, textKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// StoreText caches extracted document text with the configured TTL.
func (c *Client) StoreText(ctx context.Context, key, text string) error {
	if c == nil || c.Native == nil {
		return nil
	}
	return c.Native.Set(ctx, textKeyPrefix+key, text, c.textTTL).Err()
}
