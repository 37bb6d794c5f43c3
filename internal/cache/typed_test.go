package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testPayload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestTypedCache_SetGet(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[testPayload](mem, "payload:", time.Minute)
	ctx := context.Background()

	want := testPayload{Name: "a", Count: 2, Tags: []string{"x"}}
	if err := tc.Set(ctx, "one", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := tc.Get(ctx, "one")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Name != want.Name || got.Count != want.Count || len(got.Tags) != 1 {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if has, _ := mem.Has(ctx, "payload:one"); !has {
		t.Error("value should be stored under the namespace")
	}

	if _, ok := tc.Get(ctx, "missing"); ok {
		t.Error("expected miss")
	}
}

func TestTypedCache_DecodeFailureIsMiss(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	ctx := context.Background()
	_ = mem.Set(ctx, "payload:bad", []byte("{not json"), 0)

	tc := NewTypedCache[testPayload](mem, "payload:", time.Minute)
	if _, ok := tc.Get(ctx, "bad"); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestTypedCache_Invalidate(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	ctx := context.Background()

	a := NewTypedCache[int](mem, "a:", time.Minute)
	b := NewTypedCache[int](mem, "b:", time.Minute)
	_ = a.Set(ctx, "1", 1)
	_ = b.Set(ctx, "1", 2)

	if err := a.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok := a.Get(ctx, "1"); ok {
		t.Error("namespace a should be empty")
	}
	if v, ok := b.Get(ctx, "1"); !ok || v != 2 {
		t.Errorf("namespace b lost its value: %v, %v", v, ok)
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[string](mem, "s:", time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	compute := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "computed", nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tc.GetOrSet(ctx, "k", compute)
			if err != nil || v != "computed" {
				t.Errorf("GetOrSet = %q, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("compute called %d times, want 1", n)
	}

	v, err := tc.GetOrSet(ctx, "k", func(context.Context) (string, error) {
		return "", errors.New("should not be called")
	})
	if err != nil || v != "computed" {
		t.Errorf("cached GetOrSet = %q, %v", v, err)
	}
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[string](mem, "s:", time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	if _, err := tc.GetOrSet(ctx, "k", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrSet error = %v, want boom", err)
	}
	if has, _ := mem.Has(ctx, "s:k"); has {
		t.Error("failed computation should not be cached")
	}
}

func TestTypedCache_GetOrSetSurvivesCallerCancel(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[string](mem, "s:", time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "computed", nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	type result struct {
		v   string
		err error
	}
	first := make(chan result, 1)
	go func() {
		v, err := tc.GetOrSet(firstCtx, "k", compute)
		first <- result{v, err}
	}()
	<-started

	second := make(chan result, 1)
	go func() {
		v, err := tc.GetOrSet(context.Background(), "k", func(context.Context) (string, error) {
			return "", errors.New("joined caller should share the first computation")
		})
		second <- result{v, err}
	}()
	// Give the second caller time to join the in-flight computation.
	time.Sleep(20 * time.Millisecond)

	cancel()
	close(release)

	for name, ch := range map[string]chan result{"first": first, "second": second} {
		r := <-ch
		if r.err != nil || r.v != "computed" {
			t.Errorf("%s GetOrSet = %q, %v", name, r.v, r.err)
		}
	}
	if has, _ := mem.Has(context.Background(), "s:k"); !has {
		t.Error("shared computation should be cached after caller cancel")
	}
}
