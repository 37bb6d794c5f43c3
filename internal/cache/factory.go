// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// Config selects and configures a cache backend.
type Config struct {
	// RedisURL selects the Redis backend when set.
	RedisURL        string
	Prefix          string
	DefaultTTL      time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
	// FallbackToMemory uses the memory backend when Redis is unreachable.
	FallbackToMemory bool
}

// New creates the configured backend.
func New(ctx context.Context, cfg Config) (Cache, error) {
	if cfg.RedisURL != "" {
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		rc, err := NewRedisCache(ctx, opts)
		if err == nil {
			slog.Info("cache backend ready", "backend", "redis", "prefix", opts.Prefix)
			return rc, nil
		}
		if !cfg.FallbackToMemory {
			return nil, err
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = time.Minute
	}
	slog.Info("cache backend ready", "backend", "memory", "max_entries", cfg.MaxEntries)
	return NewMemoryCache(MemoryOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxEntries:      cfg.MaxEntries,
		CleanupInterval: cleanup,
	}), nil
}
