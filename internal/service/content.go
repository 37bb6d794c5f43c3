// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the content queries behind the site pages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/olegiv/ocms-site/internal/cms"
	"github.com/olegiv/ocms-site/internal/content"
	"github.com/olegiv/ocms-site/internal/richtext"
	"github.com/olegiv/ocms-site/internal/util"
)

// DefaultQuantity is the page size for list queries.
const DefaultQuantity = 100

// Collection orderings.
const (
	orderNewestFirst = "-fields.date"
	orderFAQ         = "fields.id"
)

// ContentSource is the CMS surface the service needs. *cms.Client
// implements it.
type ContentSource interface {
	GetEntries(ctx context.Context, q cms.Query) (*cms.EntryCollection, error)
	FirstEntry(ctx context.Context, q cms.Query) (*cms.Entry, error)
	InvalidateCache(ctx context.Context) error
}

// DocumentEnricher attaches link previews to a document without modifying
// it. *preview.Enricher implements it.
type DocumentEnricher interface {
	Enrich(ctx context.Context, doc *richtext.Document) (*richtext.Document, error)
}

// PostList is a page of posts with the CMS reported total.
type PostList struct {
	Entries []content.Post `json:"entries"`
	Total   int            `json:"total"`
}

// FAQList is the FAQ with the CMS reported total.
type FAQList struct {
	Entries []content.FAQItem `json:"entries"`
	Total   int               `json:"total"`
}

// ContentService loads and normalizes CMS content.
type ContentService struct {
	source   ContentSource
	enricher DocumentEnricher
	logger   *slog.Logger
}

// NewContentService creates a ContentService. A nil enricher serves
// bodies without link previews.
func NewContentService(source ContentSource, enricher DocumentEnricher, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{source: source, enricher: enricher, logger: logger}
}

// FetchBlogEntries returns the newest posts. quantity <= 0 means
// DefaultQuantity.
func (s *ContentService) FetchBlogEntries(ctx context.Context, quantity int) (PostList, error) {
	return s.fetchPosts(ctx, cms.Query{
		ContentType: string(content.KindPost),
		Order:       orderNewestFirst,
		Limit:       limit(quantity),
	})
}

// FetchBlogEntriesByTag returns the newest posts carrying tag.
func (s *ContentService) FetchBlogEntriesByTag(ctx context.Context, tag string, quantity int) (PostList, error) {
	return s.fetchPosts(ctx, cms.Query{
		ContentType: string(content.KindPost),
		Order:       orderNewestFirst,
		Limit:       limit(quantity),
		FieldsIn:    map[string][]string{"tags": {tag}},
	})
}

func (s *ContentService) fetchPosts(ctx context.Context, q cms.Query) (PostList, error) {
	coll, err := s.source.GetEntries(ctx, q)
	if err != nil {
		return PostList{}, fmt.Errorf("fetching posts: %w", err)
	}
	entries, err := content.NormalizeEntries(coll, content.KindPost)
	s.logSkipped(content.KindPost, err)
	return PostList{Entries: content.EntriesOf[content.Post](entries), Total: entries.Total}, nil
}

// FetchBlogEntryBySlug returns one post with link previews attached.
// A missing post yields an error wrapping cms.ErrNotFound.
func (s *ContentService) FetchBlogEntryBySlug(ctx context.Context, slug string) (content.Post, error) {
	entry, err := s.source.FirstEntry(ctx, bySlug(content.KindPost, slug))
	if err != nil {
		return content.Post{}, fmt.Errorf("fetching post %q: %w", slug, err)
	}
	post, err := content.NormalizePost(*entry)
	if err != nil {
		return content.Post{}, err
	}
	if post.Body, err = s.enrich(ctx, post.Body); err != nil {
		return content.Post{}, err
	}
	return post, nil
}

// PostExists reports whether a post with slug exists. It skips
// normalization and link previews.
func (s *ContentService) PostExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.source.FirstEntry(ctx, bySlug(content.KindPost, slug))
	if errors.Is(err, cms.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up post %q: %w", slug, err)
	}
	return true, nil
}

// FetchPageBySlug returns one page with link previews attached.
func (s *ContentService) FetchPageBySlug(ctx context.Context, slug string) (content.Page, error) {
	entry, err := s.source.FirstEntry(ctx, bySlug(content.KindPage, slug))
	if err != nil {
		return content.Page{}, fmt.Errorf("fetching page %q: %w", slug, err)
	}
	page, err := content.NormalizePage(*entry)
	if err != nil {
		return content.Page{}, err
	}
	if page.Body, err = s.enrich(ctx, page.Body); err != nil {
		return content.Page{}, err
	}
	return page, nil
}

// FetchPages lists pages without enrichment, for sitemaps and route lists.
func (s *ContentService) FetchPages(ctx context.Context, quantity int) ([]content.Page, error) {
	coll, err := s.source.GetEntries(ctx, cms.Query{
		ContentType: string(content.KindPage),
		Limit:       limit(quantity),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching pages: %w", err)
	}
	entries, err := content.NormalizeEntries(coll, content.KindPage)
	s.logSkipped(content.KindPage, err)
	return content.EntriesOf[content.Page](entries), nil
}

// FetchFAQItems returns every FAQ item ordered by id.
func (s *ContentService) FetchFAQItems(ctx context.Context) (FAQList, error) {
	coll, err := s.source.GetEntries(ctx, cms.Query{
		ContentType: string(content.KindFAQItem),
		Order:       orderFAQ,
	})
	if err != nil {
		return FAQList{}, fmt.Errorf("fetching faq items: %w", err)
	}
	entries, err := content.NormalizeEntries(coll, content.KindFAQItem)
	s.logSkipped(content.KindFAQItem, err)
	return FAQList{Entries: content.EntriesOf[content.FAQItem](entries), Total: entries.Total}, nil
}

// Tags returns the distinct tags of the newest posts, sorted.
func (s *ContentService) Tags(ctx context.Context) ([]string, error) {
	posts, err := s.FetchBlogEntries(ctx, DefaultQuantity)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	tags := []string{}
	for _, p := range posts.Entries {
		for _, tag := range p.Tags {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// TagBySlug returns the tag whose slug form equals slug.
func (s *ContentService) TagBySlug(ctx context.Context, slug string) (string, error) {
	tags, err := s.Tags(ctx)
	if err != nil {
		return "", err
	}
	for _, tag := range tags {
		if util.Slugify(tag) == slug {
			return tag, nil
		}
	}
	return "", fmt.Errorf("tag %q: %w", slug, cms.ErrNotFound)
}

// Revalidate drops cached CMS responses so the next request sees fresh
// content.
func (s *ContentService) Revalidate(ctx context.Context) error {
	if err := s.source.InvalidateCache(ctx); err != nil {
		return fmt.Errorf("invalidating cms cache: %w", err)
	}
	return nil
}

// Warm loads the listings most pages depend on.
func (s *ContentService) Warm(ctx context.Context) error {
	_, postsErr := s.FetchBlogEntries(ctx, DefaultQuantity)
	_, faqErr := s.FetchFAQItems(ctx)
	_, pagesErr := s.FetchPages(ctx, DefaultQuantity)
	return errors.Join(postsErr, faqErr, pagesErr)
}

func (s *ContentService) enrich(ctx context.Context, doc *richtext.Document) (*richtext.Document, error) {
	if s.enricher == nil || doc == nil {
		return doc, nil
	}
	enriched, err := s.enricher.Enrich(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("enriching body: %w", err)
	}
	return enriched, nil
}

func (s *ContentService) logSkipped(kind content.Kind, err error) {
	if err != nil {
		s.logger.Warn("skipped malformed entries", "kind", kind, "error", err)
	}
}

// GenerateRoute returns the site path for a post slug. Slugs the CMS
// stores as full blog URLs are reduced to their post segment.
func GenerateRoute(slug string) string {
	if i := strings.Index(slug, "/blog/"); i >= 0 {
		rest := slug[i+len("/blog/"):]
		if j := strings.Index(rest, "/blog/"); j >= 0 {
			rest = rest[:j]
		}
		return "/blog/" + rest
	}
	return "/blog/" + strings.TrimPrefix(slug, "/")
}

func bySlug(kind content.Kind, slug string) cms.Query {
	return cms.Query{
		ContentType: string(kind),
		Fields:      map[string]string{"slug": slug},
		Limit:       1,
	}
}

func limit(quantity int) int {
	if quantity <= 0 {
		return DefaultQuantity
	}
	return quantity
}
