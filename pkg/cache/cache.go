// Package cache provides a best-effort Redis read-through cache for aggregate
// query results. Entries are grouped into namespaces that are invalidated as a
// unit. Cache failures never surface to callers; they are logged and treated
// as misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

// System reads and writes cached values.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Get decodes the cached value for key in namespace ns into dst and reports
	// a hit. The returned Slot pins the namespace generation Get observed.
	Get(ctx context.Context, ns, key string, dst any) (Slot, bool)
	// Set stores value in slot. A value computed after a miss is written under
	// the generation the miss saw, so an Invalidate in between orphans it.
	Set(ctx context.Context, slot Slot, value any)
	// Invalidate drops every entry in namespace ns.
	Invalidate(ctx context.Context, ns string)
	// Ping checks connectivity. A disabled cache always succeeds.
	Ping(ctx context.Context) error
	// Enabled reports whether values are actually cached.
	Enabled() bool
}

// Slot is a storage location resolved by Get. The zero Slot stores nothing.
type Slot struct {
	key string
}

// Key returns the storage key, empty for the zero Slot.
func (s Slot) Key() string { return s.key }

// New returns a Redis-backed cache, or a no-op cache when cfg has no URL.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "cache")
	if !cfg.Enabled() {
		return Noop(), nil
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &redisCache{
		client: goredis.NewClient(opts),
		ttl:    cfg.TTLDuration(),
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

type redisCache struct {
	client *goredis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache")

	lc.OnStartup("cache", func(ctx context.Context) error {
		// an unreachable cache degrades to misses
		if err := c.Ping(ctx); err != nil {
			c.logger.Warn("cache unreachable", "error", err)
			return nil
		}
		c.logger.Info("cache connected")
		return nil
	})

	lc.OnShutdown("cache", func(context.Context) error {
		return c.client.Close()
	})

	return nil
}

func (c *redisCache) Get(ctx context.Context, ns, key string, dst any) (Slot, bool) {
	k, err := c.key(ctx, ns, key)
	if err != nil {
		c.logger.Debug("cache generation lookup failed", "namespace", ns, "error", err)
		return Slot{}, false
	}
	slot := Slot{key: k}

	data, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Debug("cache get failed", "key", k, "error", err)
		}
		return slot, false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("cache decode failed", "key", k, "error", err)
		return slot, false
	}
	return slot, true
}

func (c *redisCache) Set(ctx context.Context, slot Slot, value any) {
	if slot.key == "" {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", slot.key, "error", err)
		return
	}

	if err := c.client.Set(ctx, slot.key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", "key", slot.key, "error", err)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, ns string) {
	if err := c.client.Incr(ctx, c.generationKey(ns)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "namespace", ns, "error", err)
	}
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Enabled() bool { return true }

func (c *redisCache) generationKey(ns string) string {
	return c.prefix + ":" + ns + ":gen"
}

func (c *redisCache) key(ctx context.Context, ns, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey(ns)).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", err
	}
	return Key(c.prefix, ns, gen, key), nil
}

// Key builds the storage key for an entry in generation gen of namespace ns.
func Key(prefix, ns string, gen int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", prefix, ns, gen, key)
}

type noop struct{}

// Noop returns a cache that never stores anything.
func Noop() System { return noop{} }

func (noop) Start(*lifecycle.Coordinator) error                    { return nil }
func (noop) Get(context.Context, string, string, any) (Slot, bool) { return Slot{}, false }
func (noop) Set(context.Context, Slot, any)                        {}
func (noop) Invalidate(context.Context, string)                    {}
func (noop) Ping(context.Context) error                            { return nil }
func (noop) Enabled() bool                                         { return false }
