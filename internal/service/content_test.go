// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/olegiv/ocms-site/internal/cms"
	"github.com/olegiv/ocms-site/internal/richtext"
)

// fakeSource serves canned entries per content type and records queries.
type fakeSource struct {
	entries     map[string][]cms.Entry
	totals      map[string]int
	queries     []cms.Query
	invalidated int
	err         error
}

func (f *fakeSource) GetEntries(_ context.Context, q cms.Query) (*cms.EntryCollection, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	items := f.entries[q.ContentType]
	if slug, ok := q.Fields["slug"]; ok {
		var matched []cms.Entry
		for _, e := range items {
			var fields struct {
				Slug string `json:"slug"`
			}
			_ = json.Unmarshal(e.Fields, &fields)
			if fields.Slug == slug {
				matched = append(matched, e)
			}
		}
		items = matched
	}
	return &cms.EntryCollection{Items: items, Total: f.totals[q.ContentType]}, nil
}

func (f *fakeSource) FirstEntry(ctx context.Context, q cms.Query) (*cms.Entry, error) {
	coll, err := f.GetEntries(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(coll.Items) == 0 {
		return nil, cms.ErrNotFound
	}
	return &coll.Items[0], nil
}

func (f *fakeSource) InvalidateCache(context.Context) error {
	f.invalidated++
	return nil
}

type stubEnricher struct {
	calls int
}

func (s *stubEnricher) Enrich(_ context.Context, doc *richtext.Document) (*richtext.Document, error) {
	s.calls++
	out := doc.Clone()
	for _, link := range richtext.EmbeddedLinks(out) {
		link.Meta = &richtext.LinkCard{URL: link.URL, Title: "enriched"}
	}
	return out, nil
}

func rawEntry(id, fields string) cms.Entry {
	return cms.Entry{Sys: cms.Sys{ID: id, Type: "Entry"}, Fields: json.RawMessage(fields)}
}

const postBody = `{"nodeType": "document", "data": {}, "content": [
  {"nodeType": "embedded-entry-block", "data": {"target": {"sys": {"id": "l1", "type": "Entry", "contentType": {"sys": {"id": "embeddedLink"}}}, "fields": {"url": "https://example.com/article"}}}, "content": []}
]}`

func newFakeSource() *fakeSource {
	return &fakeSource{
		entries: map[string][]cms.Entry{
			"post": {
				rawEntry("p1", `{"title": "First", "slug": "first", "date": "2021-11-03", "tags": ["Zero Knowledge", "privacy"], "body": `+postBody+`}`),
				rawEntry("p2", `{"title": "Second", "slug": "second", "date": "2021-10-01", "tags": ["privacy"]}`),
				rawEntry("bad", `{"title": "Broken", "slug": "broken", "date": "yesterday"}`),
			},
			"page": {
				rawEntry("pg1", `{"title": "About", "slug": "about", "body": `+postBody+`}`),
			},
			"faq_item": {
				rawEntry("f1", `{"id": 1, "question": "What?", "answer": "**This.**"}`),
			},
		},
		totals: map[string]int{"post": 3, "page": 1, "faq_item": 1},
	}
}

func TestFetchBlogEntries(t *testing.T) {
	src := newFakeSource()
	svc := NewContentService(src, nil, nil)

	list, err := svc.FetchBlogEntries(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchBlogEntries: %v", err)
	}
	if len(list.Entries) != 2 {
		t.Errorf("got %d posts, want 2 (malformed one skipped)", len(list.Entries))
	}
	if list.Total != 3 {
		t.Errorf("Total = %d, want CMS total 3", list.Total)
	}

	q := src.queries[0]
	if q.ContentType != "post" || q.Order != "-fields.date" || q.Limit != DefaultQuantity {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestFetchBlogEntriesByTag(t *testing.T) {
	src := newFakeSource()
	svc := NewContentService(src, nil, nil)

	if _, err := svc.FetchBlogEntriesByTag(context.Background(), "privacy", 5); err != nil {
		t.Fatalf("FetchBlogEntriesByTag: %v", err)
	}
	q := src.queries[0]
	if q.Limit != 5 {
		t.Errorf("Limit = %d, want 5", q.Limit)
	}
	if got := q.Values().Get("fields.tags[in]"); got != "privacy" {
		t.Errorf("tag filter = %q", got)
	}
}

func TestFetchBlogEntryBySlugEnriches(t *testing.T) {
	src := newFakeSource()
	enricher := &stubEnricher{}
	svc := NewContentService(src, enricher, nil)

	post, err := svc.FetchBlogEntryBySlug(context.Background(), "first")
	if err != nil {
		t.Fatalf("FetchBlogEntryBySlug: %v", err)
	}
	if post.Title != "First" || post.PublishedDate != "November 03, 2021" {
		t.Errorf("post = %+v", post)
	}
	links := richtext.EmbeddedLinks(post.Body)
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	card, ok := links[0].Meta.(*richtext.LinkCard)
	if !ok || card.Title != "enriched" {
		t.Errorf("Meta = %#v", links[0].Meta)
	}
	if enricher.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", enricher.calls)
	}

	// Posts without a body skip enrichment.
	if _, err := svc.FetchBlogEntryBySlug(context.Background(), "second"); err != nil {
		t.Fatalf("FetchBlogEntryBySlug(second): %v", err)
	}
	if enricher.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", enricher.calls)
	}
}

func TestFetchBySlugNotFound(t *testing.T) {
	svc := NewContentService(newFakeSource(), nil, nil)

	_, err := svc.FetchBlogEntryBySlug(context.Background(), "missing")
	if !errors.Is(err, cms.ErrNotFound) {
		t.Errorf("post: expected ErrNotFound, got %v", err)
	}
	_, err = svc.FetchPageBySlug(context.Background(), "missing")
	if !errors.Is(err, cms.ErrNotFound) {
		t.Errorf("page: expected ErrNotFound, got %v", err)
	}
}

func TestPostExists(t *testing.T) {
	src := newFakeSource()
	enricher := &stubEnricher{}
	svc := NewContentService(src, enricher, nil)
	ctx := context.Background()

	ok, err := svc.PostExists(ctx, "first")
	if err != nil || !ok {
		t.Errorf("PostExists(first) = %v, %v; want true, nil", ok, err)
	}
	ok, err = svc.PostExists(ctx, "missing")
	if err != nil || ok {
		t.Errorf("PostExists(missing) = %v, %v; want false, nil", ok, err)
	}
	if enricher.calls != 0 {
		t.Errorf("enricher called %d times, want 0", enricher.calls)
	}

	src.err = errors.New("cms down")
	if _, err := svc.PostExists(ctx, "first"); err == nil {
		t.Error("PostExists should return CMS failures")
	}
}

func TestFetchPageBySlug(t *testing.T) {
	svc := NewContentService(newFakeSource(), &stubEnricher{}, nil)

	page, err := svc.FetchPageBySlug(context.Background(), "about")
	if err != nil {
		t.Fatalf("FetchPageBySlug: %v", err)
	}
	if page.Title != "About" {
		t.Errorf("Title = %q", page.Title)
	}
	if links := richtext.EmbeddedLinks(page.Body); len(links) != 1 || links[0].Meta == nil {
		t.Error("page body not enriched")
	}
}

func TestFetchFAQItems(t *testing.T) {
	src := newFakeSource()
	svc := NewContentService(src, nil, nil)

	faq, err := svc.FetchFAQItems(context.Background())
	if err != nil {
		t.Fatalf("FetchFAQItems: %v", err)
	}
	if len(faq.Entries) != 1 || *faq.Entries[0].Question != "What?" {
		t.Errorf("faq = %+v", faq)
	}
	if src.queries[0].Order != "fields.id" {
		t.Errorf("Order = %q, want fields.id", src.queries[0].Order)
	}
}

func TestTags(t *testing.T) {
	svc := NewContentService(newFakeSource(), nil, nil)

	tags, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "Zero Knowledge" || tags[1] != "privacy" {
		t.Errorf("tags = %v", tags)
	}

	tag, err := svc.TagBySlug(context.Background(), "zero-knowledge")
	if err != nil || tag != "Zero Knowledge" {
		t.Errorf("TagBySlug = %q, %v", tag, err)
	}
	if _, err := svc.TagBySlug(context.Background(), "nope"); !errors.Is(err, cms.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRevalidateAndWarm(t *testing.T) {
	src := newFakeSource()
	svc := NewContentService(src, nil, nil)

	if err := svc.Revalidate(context.Background()); err != nil {
		t.Fatalf("Revalidate: %v", err)
	}
	if src.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", src.invalidated)
	}

	if err := svc.Warm(context.Background()); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if len(src.queries) != 3 {
		t.Errorf("Warm issued %d queries, want 3", len(src.queries))
	}

	src.err = errors.New("cms down")
	if err := svc.Warm(context.Background()); err == nil {
		t.Error("expected Warm to report source errors")
	}
}

func TestGenerateRoute(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"hello-world", "/blog/hello-world"},
		{"/hello-world", "/blog/hello-world"},
		{"/blog/hello-world", "/blog/hello-world"},
		{"https://example.com/blog/hello-world", "/blog/hello-world"},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := GenerateRoute(tt.slug); got != tt.want {
				t.Errorf("GenerateRoute(%q) = %q, want %q", tt.slug, got, tt.want)
			}
		})
	}
}
