// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"strings"
	"testing"
)

func testSite() *SiteConfig {
	return &SiteConfig{
		SiteName:        "My Site",
		SiteURL:         "https://example.com",
		SiteDescription: "A great website",
		DefaultOGImage:  "/images/og-default.jpg",
		TwitterHandle:   "@mysite",
	}
}

func TestBuildMetaHomepage(t *testing.T) {
	meta := BuildMeta(nil, testSite())

	if meta.Title != "My Site" {
		t.Errorf("Title = %q, want %q", meta.Title, "My Site")
	}
	if meta.Description != "A great website" {
		t.Errorf("Description = %q, want %q", meta.Description, "A great website")
	}
	if meta.Canonical != "https://example.com" {
		t.Errorf("Canonical = %q, want %q", meta.Canonical, "https://example.com")
	}
	if meta.OGImage != "https://example.com/images/og-default.jpg" {
		t.Errorf("OGImage = %q", meta.OGImage)
	}
	if meta.OGType != "website" {
		t.Errorf("OGType = %q, want website", meta.OGType)
	}
	if meta.ArticleSchema != "" {
		t.Error("homepage should not carry an article schema")
	}
}

func TestBuildMetaPost(t *testing.T) {
	page := &PageData{
		Title:       "Hello",
		Description: "First post",
		Path:        "/blog/hello",
		Image:       "https://images.ctfassets.net/cover.png",
		Tags:        []string{"Privacy", "Zero Knowledge"},
		PublishedAt: "2021-11-03T00:00:00Z",
		AuthorName:  "Jane Doe",
		Article:     true,
	}

	meta := BuildMeta(page, testSite())

	if meta.Title != "Hello | My Site" {
		t.Errorf("Title = %q, want %q", meta.Title, "Hello | My Site")
	}
	if meta.OGTitle != "Hello" {
		t.Errorf("OGTitle = %q, want Hello", meta.OGTitle)
	}
	if meta.Canonical != "https://example.com/blog/hello" {
		t.Errorf("Canonical = %q", meta.Canonical)
	}
	if meta.OGURL != meta.Canonical {
		t.Errorf("OGURL = %q, want canonical", meta.OGURL)
	}
	if meta.OGImage != page.Image {
		t.Errorf("OGImage = %q, want %q", meta.OGImage, page.Image)
	}
	if meta.OGType != "article" {
		t.Errorf("OGType = %q, want article", meta.OGType)
	}
	if meta.Keywords != "Privacy, Zero Knowledge" {
		t.Errorf("Keywords = %q", meta.Keywords)
	}
	if meta.Robots != "index,follow" {
		t.Errorf("Robots = %q", meta.Robots)
	}

	var schema ArticleSchema
	if err := json.Unmarshal([]byte(meta.ArticleSchema), &schema); err != nil {
		t.Fatalf("article schema is not JSON: %v", err)
	}
	if schema.Headline != "Hello" || schema.DatePublished != "2021-11-03T00:00:00Z" {
		t.Errorf("schema = %+v", schema)
	}
	if schema.Author == nil || schema.Author.Name != "Jane Doe" {
		t.Errorf("schema author = %+v", schema.Author)
	}
	if schema.Publisher.Logo == nil || schema.Publisher.Logo.URL != "https://example.com/images/og-default.jpg" {
		t.Errorf("schema publisher = %+v", schema.Publisher)
	}
}

func TestBuildMetaFallbacks(t *testing.T) {
	meta := BuildMeta(&PageData{Path: "/faq", NoIndex: true}, testSite())

	if meta.Title != "My Site" {
		t.Errorf("Title = %q, want site name", meta.Title)
	}
	if meta.Description != "A great website" {
		t.Errorf("Description = %q, want site description", meta.Description)
	}
	if meta.OGImage != "https://example.com/images/og-default.jpg" {
		t.Errorf("OGImage = %q, want default image", meta.OGImage)
	}
	if meta.Robots != "noindex,follow" {
		t.Errorf("Robots = %q", meta.Robots)
	}
	if meta.OGType != "website" {
		t.Errorf("OGType = %q, want website", meta.OGType)
	}
}

func TestArticleSchemaEscapesScript(t *testing.T) {
	js := BuildArticleSchema(&PageData{Title: "</script><script>alert(1)</script>"}, testSite())
	if strings.Contains(string(js), "</script>") {
		t.Errorf("schema contains a closing script tag: %s", js)
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "Hello world", 20, "Hello world"},
		{"collapses whitespace", "Hello \n\t world", 20, "Hello world"},
		{"word boundary", "The quick brown fox jumps", 12, "The quick..."},
		{"multibyte", "Привет мир и всем", 10, "Привет..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateText(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateText(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
