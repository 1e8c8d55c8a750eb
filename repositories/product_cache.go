package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productListPrefix = "products:list:"

// ProductCache holds rendered product list pages. A nil client disables it,
// every lookup then misses.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	return &ProductCache{client: client, ttl: ttl, logger: logger}
}

func productListKey(page, limit int) string {
	return fmt.Sprintf("%spage:%d:limit:%d", productListPrefix, page, limit)
}

func (c *ProductCache) Get(ctx context.Context, page, limit int) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, productListKey(page, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("product cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *ProductCache) Set(ctx context.Context, page, limit int, data []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, productListKey(page, limit), data, c.ttl).Err(); err != nil {
		c.logger.Warn("product cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached page.
func (c *ProductCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, productListPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("product cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("product cache invalidate failed", zap.Error(err))
	}
}
