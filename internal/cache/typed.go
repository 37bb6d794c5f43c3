// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// computeTimeout bounds a shared GetOrSet computation.
const computeTimeout = 30 * time.Second

// TypedCache stores JSON-encoded values of type T under a key namespace.
// Concurrent GetOrSet calls for the same key share one computation.
type TypedCache[T any] struct {
	cache      Cache
	namespace  string
	defaultTTL time.Duration
	group      singleflight.Group
}

// NewTypedCache wraps c. Keys are stored as namespace + key.
func NewTypedCache[T any](c Cache, namespace string, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, namespace: namespace, defaultTTL: defaultTTL}
}

// Get returns the cached value, or false on a miss or a decode failure.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, c.namespace+key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// Set stores value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores value with ttl.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	return c.cache.Set(ctx, c.namespace+key, data, ttl)
}

// Delete removes key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.namespace+key)
}

// Invalidate removes every key in the namespace.
func (c *TypedCache[T]) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, c.namespace)
}

// GetOrSet returns the cached value or computes, stores and returns it.
// A failed store does not fail the call.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// Joined callers share this result, so the first caller's
		// cancellation must not abort it.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		value, err := fn(shared)
		if err != nil {
			return value, err
		}
		_ = c.Set(shared, key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}
