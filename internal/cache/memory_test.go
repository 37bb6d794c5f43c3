package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(maxEntries int) *MemoryCache {
	return NewMemoryCache(MemoryOptions{DefaultTTL: time.Hour, MaxEntries: maxEntries})
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(100)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", val)
	}

	has, err := cache.Has(ctx, "key1")
	if err != nil || !has {
		t.Errorf("Has(key1) = %v, %v; want true, nil", has, err)
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	value := []byte("abc")
	_ = cache.Set(ctx, "k", value, 0)
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	got[1] = 'y'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated: %q", again)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }
	_ = cache.Set(ctx, "short", []byte("v"), time.Second)

	now = now.Add(2 * time.Second)
	if _, err := cache.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if has, _ := cache.Has(ctx, "short"); has {
		t.Error("expired entry should not be reported by Has")
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	for _, k := range []string{"cms:a", "cms:b", "preview:a"} {
		_ = cache.Set(ctx, k, []byte(k), 0)
	}
	if err := cache.DeleteByPrefix(ctx, "cms:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	for k, want := range map[string]bool{"cms:a": false, "cms:b": false, "preview:a": true} {
		if has, _ := cache.Has(ctx, k); has != want {
			t.Errorf("Has(%q) = %v, want %v", k, has, want)
		}
	}

	_ = cache.Clear(ctx)
	if stats := cache.Stats(); stats.Items != 0 {
		t.Errorf("Items after Clear = %d, want 0", stats.Items)
	}
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	cache := newTestMemoryCache(2)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "soon", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "late", []byte("2"), time.Hour)
	_ = cache.Set(ctx, "new", []byte("3"), time.Hour)

	if has, _ := cache.Has(ctx, "soon"); has {
		t.Error("entry closest to expiry should have been evicted")
	}
	for _, k := range []string{"late", "new"} {
		if has, _ := cache.Has(ctx, k); !has {
			t.Errorf("%q should still be cached", k)
		}
	}

	// Overwriting an existing key never evicts.
	_ = cache.Set(ctx, "late", []byte("2b"), time.Hour)
	if has, _ := cache.Has(ctx, "new"); !has {
		t.Error("overwrite evicted another entry")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("1234"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", stats.HitRate)
	}
	if stats.Size != 4 || stats.Backend != "memory" {
		t.Errorf("unexpected size/backend: %+v", stats)
	}

	cache.ResetStats()
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 {
		t.Errorf("stats not reset: %+v", s)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	cache := newTestMemoryCache(0)
	_ = cache.Close()
	_ = cache.Close()
	ctx := context.Background()

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := cache.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(MemoryOptions{DefaultTTL: time.Hour, MaxEntries: 50, CleanupInterval: time.Millisecond})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d-%d", i, j%10)
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
				if j%25 == 0 {
					_ = cache.DeleteByPrefix(ctx, fmt.Sprintf("k%d-", i))
				}
			}
		}()
	}
	wg.Wait()

	if items := cache.Stats().Items; items > 50 {
		t.Errorf("Items = %d, exceeds MaxEntries", items)
	}
}
