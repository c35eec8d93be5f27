// Package redis connects the shared go-redis client used for sessions and
// rate-limit buckets.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"presale/internal/platform/config"
)

// Client is a connected go-redis client.
type Client struct {
	*goredis.Client
}

// New dials Redis and verifies the connection with a PING. An empty URL means
// Redis is not configured and yields a nil client with no error.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return &Client{Client: rdb}, nil
}

// options overlays the pool and timeout settings on the URL. Zero values keep
// the go-redis defaults.
func options(cfg config.RedisConfig) (*goredis.Options, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.MinIdleConns = cfg.MinIdleConns
	setIfPositive(&opts.PoolSize, cfg.PoolSize)
	setIfPositive(&opts.DialTimeout, cfg.DialTimeout)
	setIfPositive(&opts.ReadTimeout, cfg.ReadTimeout)
	setIfPositive(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func setIfPositive[T int | ~int64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// Health is used by the /healthz endpoint.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
