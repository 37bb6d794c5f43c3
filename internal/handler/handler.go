// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the site.
package handler

import (
	"context"
	"errors"

	"github.com/olegiv/ocms-site/internal/cms"
	"github.com/olegiv/ocms-site/internal/content"
	"github.com/olegiv/ocms-site/internal/service"
)

// Route patterns registered by the handlers.
const (
	RouteHome       = "/"
	RouteBlog       = "/blog"
	RouteBlogTag    = "/blog/tag/{tag}"
	RouteBlogPost   = "/blog/{slug}"
	RouteFAQ        = "/faq"
	RouteWhitepaper = "/whitepaper"
	RoutePage       = "/{slug}"

	RouteAPIPosts        = "/api/posts"
	RouteAPIPost         = "/api/posts/{slug}"
	RouteAPIPostMarkdown = "/api/posts/{slug}/markdown"
	RouteAPIRevalidate   = "/api/revalidate"

	RouteSitemap = "/sitemap.xml"
	RouteRobots  = "/robots.txt"
	RouteHealth  = "/health"
	RouteLive    = "/health/live"
)

// Content is the read side of the content service. *service.ContentService
// implements it.
type Content interface {
	FetchBlogEntries(ctx context.Context, quantity int) (service.PostList, error)
	FetchBlogEntriesByTag(ctx context.Context, tag string, quantity int) (service.PostList, error)
	FetchBlogEntryBySlug(ctx context.Context, slug string) (content.Post, error)
	PostExists(ctx context.Context, slug string) (bool, error)
	FetchPageBySlug(ctx context.Context, slug string) (content.Page, error)
	FetchPages(ctx context.Context, quantity int) ([]content.Page, error)
	FetchFAQItems(ctx context.Context) (service.FAQList, error)
	Tags(ctx context.Context) ([]string, error)
	TagBySlug(ctx context.Context, slug string) (string, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, cms.ErrNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
