// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-site/internal/markup"
	"github.com/olegiv/ocms-site/internal/middleware"
	"github.com/olegiv/ocms-site/internal/service"
)

// maxAPILimit caps the limit query parameter.
const maxAPILimit = 1000

// APIHandler serves normalized content as JSON and Markdown.
type APIHandler struct {
	content Content
	markup  *markup.Renderer
	logger  *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(c Content, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{content: c, markup: markup.New(), logger: logger}
}

// Register mounts the API routes.
func (h *APIHandler) Register(r chi.Router) {
	r.Get(RouteAPIPosts, h.ListPosts)
	r.Get(RouteAPIPost, h.GetPost)
	r.Get(RouteAPIPostMarkdown, h.PostMarkdown)
}

// ListPosts handles GET /api/posts with optional tag and limit parameters.
func (h *APIHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultQuantity
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAPILimit {
			middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_limit",
				"limit must be between 1 and "+strconv.Itoa(maxAPILimit))
			return
		}
		limit = n
	}

	var (
		posts service.PostList
		err   error
	)
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		posts, err = h.content.FetchBlogEntriesByTag(r.Context(), tag, limit)
	} else {
		posts, err = h.content.FetchBlogEntries(r.Context(), limit)
	}
	if err != nil {
		h.internalError(w, r, "failed to list posts", err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /api/posts/{slug}.
func (h *APIHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.content.FetchBlogEntryBySlug(r.Context(), slug)
	if err != nil {
		if isNotFound(err) {
			middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Post not found")
			return
		}
		h.internalError(w, r, "failed to fetch post", err, "slug", slug)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// PostMarkdown handles GET /api/posts/{slug}/markdown. The body is rendered
// to markup first so the export matches the page.
func (h *APIHandler) PostMarkdown(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.content.FetchBlogEntryBySlug(r.Context(), slug)
	if err != nil {
		if isNotFound(err) {
			middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Post not found")
			return
		}
		h.internalError(w, r, "failed to fetch post", err, "slug", slug)
		return
	}

	tree, renderErr := h.markup.Render(post.Body, markup.Options{Profile: markup.ProfileFull})
	if renderErr != nil {
		h.logger.WarnContext(r.Context(), "elided rich-text nodes", "slug", slug, "error", renderErr)
	}
	body, err := markup.ToMarkdown(tree)
	if err != nil {
		h.internalError(w, r, "failed to export markdown", err, "slug", slug)
		return
	}

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(post.Title)
	sb.WriteString("\n\n")
	if sub := deref(post.Subtitle); sub != "" {
		sb.WriteString("_")
		sb.WriteString(sub)
		sb.WriteString("_\n\n")
	}
	if body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(sb.String()))
}

func (h *APIHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	h.logger.ErrorContext(r.Context(), msg, append(args, "error", err)...)
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
