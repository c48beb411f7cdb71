package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a fast local layer backed by a remote one.
// Writes go to both layers; local misses are refilled from remote.
type LayeredCache struct {
	local  Service
	remote Service
}

var _ Service = (*LayeredCache)(nil)

// NewLayeredCache combines a local and remote cache.
func NewLayeredCache(local, remote Service) *LayeredCache {
	return &LayeredCache{local: local, remote: remote}
}

func (c *LayeredCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	// Local failure is not fatal, the remote copy is authoritative.
	_ = c.local.Set(ctx, key, value, expiration)
	return nil
}

func (c *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := c.local.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.Is(err, ErrCacheMiss) {
		return err
	}

	if err := c.remote.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = c.local.Set(ctx, key, dest, time.Minute)
	return nil
}

func (c *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = c.local.Delete(ctx, keys...)
	return c.remote.Delete(ctx, keys...)
}

func (c *LayeredCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.remote.Exists(ctx, keys...)
}

func (c *LayeredCache) Close() error {
	lerr := c.local.Close()
	rerr := c.remote.Close()
	if rerr != nil {
		return rerr
	}
	return lerr
}
