// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-site/internal/cache"
	"github.com/olegiv/ocms-site/internal/testutil"
	"github.com/olegiv/ocms-site/internal/version"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// pingCache is a memory cache that also answers pings.
type pingCache struct {
	*cache.MemoryCache
	err error
}

func (c pingCache) Ping(context.Context) error { return c.err }

func healthRequest(t *testing.T, h *HealthHandler, target string) (*httptest.ResponseRecorder, HealthStatus) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var status HealthStatus
	if target == RouteHealth {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	}
	return rec, status
}

func TestHealthHealthy(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	h := NewHealthHandler(ok, testutil.TestCache(t), version.Info{Version: "v1.2.3"})

	rec, status := healthRequest(t, h, RouteHealth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["cms"].Status)
	assert.NotContains(t, status.Checks, "cache")
	assert.Contains(t, status.Version, "v1.2.3")
	require.NotNil(t, status.Cache)
	assert.Equal(t, "memory", status.Cache.Backend)
}

func TestHealthCMSDown(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("cms unreachable") })
	h := NewHealthHandler(down, nil, version.Info{})

	rec, status := healthRequest(t, h, RouteHealth)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "cms unreachable", status.Checks["cms"].Message)
	assert.Nil(t, status.Cache)
}

func TestHealthCacheDegraded(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	c := pingCache{MemoryCache: testutil.TestCache(t), err: errors.New("redis gone")}
	h := NewHealthHandler(ok, c, version.Info{})

	rec, status := healthRequest(t, h, RouteHealth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Checks["cache"].Status)
}

func TestHealthNoCMS(t *testing.T) {
	h := NewHealthHandler(nil, nil, version.Info{})

	rec, status := healthRequest(t, h, RouteHealth)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not configured", status.Checks["cms"].Message)
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil, nil, version.Info{})

	rec, _ := healthRequest(t, h, RouteLive)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
