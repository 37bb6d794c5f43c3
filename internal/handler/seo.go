// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-site/internal/seo"
	"github.com/olegiv/ocms-site/internal/service"
)

// SEOHandler serves the sitemap and robots.txt.
type SEOHandler struct {
	content Content
	siteURL string
	isDev   bool
	logger  *slog.Logger
}

// NewSEOHandler creates a new SEOHandler. Development sites disallow all
// crawlers.
func NewSEOHandler(c Content, siteURL string, isDev bool, logger *slog.Logger) *SEOHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SEOHandler{content: c, siteURL: siteURL, isDev: isDev, logger: logger}
}

// Register mounts the SEO routes.
func (h *SEOHandler) Register(r chi.Router) {
	r.Get(RouteSitemap, h.Sitemap)
	r.Get(RouteRobots, h.Robots)
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.content.FetchBlogEntries(ctx, service.DefaultQuantity)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch posts for sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	pages, err := h.content.FetchPages(ctx, service.DefaultQuantity)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch pages for sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	builder := seo.NewSitemapBuilder(h.siteURL)
	builder.AddHomepage()

	postEntries := make([]seo.SitemapEntry, 0, len(posts.Entries))
	for _, p := range posts.Entries {
		postEntries = append(postEntries, seo.SitemapEntry{
			Path:    service.GenerateRoute(p.Slug),
			LastMod: p.PublishedDateISO,
		})
	}
	builder.AddPosts(postEntries)

	pageEntries := []seo.SitemapEntry{{Path: RouteBlog}, {Path: RouteFAQ}}
	for _, p := range pages {
		pageEntries = append(pageEntries, seo.SitemapEntry{Path: "/" + p.Slug})
	}
	builder.AddPages(pageEntries)
	builder.AddTags(distinctTags(posts.Entries))

	data, err := builder.Build()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	content := seo.BuildRobots(seo.RobotsConfig{
		SiteURL:       h.siteURL,
		DisallowAll:   h.isDev,
		DisallowPaths: []string{"/api/", "/health"},
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(content))
}
