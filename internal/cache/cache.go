package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"pricingdesk/internal/config"
)

// ErrMiss mirrors redis.Nil for callers.
var ErrMiss = redis.Nil

// Client wraps go-redis to centralize configuration and JSON encoding.
// A nil *Client is valid and behaves as an always-miss cache, so callers
// need no redis-configured branch.
type Client struct {
	inner *redis.Client
}

// New creates the redis client from app config. Returns (nil, nil) when no
// address is configured.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return &Client{inner: client}, nil
}

// SetJSON stores value as JSON under key with the given TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.inner == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.inner.Set(ctx, key, raw, ttl).Err()
}

// GetJSON fetches key and decodes it into out. Returns ErrMiss when the
// key is absent or the client is nil.
func (c *Client) GetJSON(ctx context.Context, key string, out any) error {
	if c == nil || c.inner == nil {
		return ErrMiss
	}
	raw, err := c.inner.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Del removes the provided keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c == nil || c.inner == nil || len(keys) == 0 {
		return nil
	}
	return c.inner.Del(ctx, keys...).Err()
}

// Close closes the client.
func (c *Client) Close() error {
	if c == nil || c.inner == nil {
		return nil
	}
	return c.inner.Close()
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
