// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-site/internal/cache"
	"github.com/olegiv/ocms-site/internal/version"
)

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 3 * time.Second

// Pinger checks a remote dependency. *cms.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	cms       Pinger
	cache     cache.Cache
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. c may be nil.
func NewHealthHandler(cmsPinger Pinger, c cache.Cache, info version.Info) *HealthHandler {
	return &HealthHandler{
		cms:       cmsPinger,
		cache:     c,
		version:   info,
		startTime: time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Register mounts the health routes.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get(RouteHealth, h.Health)
	r.Get(RouteLive, h.Liveness)
}

// Health handles GET /health. The site cannot render without the CMS, so a
// failing CMS check answers 503; a failing cache only degrades.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"cms": h.checkPinger(r.Context(), h.cms),
	}
	if p, ok := h.cache.(cache.Pinger); ok {
		checks["cache"] = h.checkPinger(r.Context(), p)
	}

	status := "healthy"
	code := http.StatusOK
	if checks["cms"].Status != "healthy" {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else if c, ok := checks["cache"]; ok && c.Status != "healthy" {
		status = "degraded"
	}

	resp := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Checks:    checks,
	}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		resp.Cache = &stats
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, code, resp)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) checkPinger(ctx context.Context, p Pinger) Check {
	if p == nil {
		return Check{Status: "unhealthy", Message: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: time.Since(start).String(),
		}
	}
	return Check{Status: "healthy", Latency: time.Since(start).String()}
}
