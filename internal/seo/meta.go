// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo provides SEO utilities for building meta tags, structured data,
// sitemaps and robots.txt.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/ocms-site/internal/util"
)

// descriptionLimit is the longest meta description emitted, in runes.
const descriptionLimit = 160

// Meta holds all SEO meta tag data for a page.
type Meta struct {
	Title         string // Page title (for <title> tag)
	Description   string // Meta description
	Keywords      string // Meta keywords
	Canonical     string // Canonical URL
	OGTitle       string // Open Graph title
	OGDescription string // Open Graph description
	OGImage       string // Open Graph image URL (absolute)
	OGType        string // Open Graph type (website, article)
	OGSiteName    string // Open Graph site name
	OGURL         string // Open Graph URL
	Robots        string // Robots directive (index,follow / noindex,nofollow)
	TwitterCard   string // Twitter card type
	TwitterSite   string // Twitter @username
	ArticleSchema template.JS
}

// PageData describes a rendered document for meta tag purposes.
type PageData struct {
	Title       string
	Description string
	// Path is the site-relative route, such as "/blog/hello".
	Path        string
	Image       string
	Tags        []string
	PublishedAt string // RFC 3339
	AuthorName  string
	// Article marks blog posts; pages are plain websites.
	Article bool
	NoIndex bool
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	SiteDescription string
	DefaultOGImage  string
	TwitterHandle   string
}

// BuildMeta creates a Meta struct from page and site data with proper
// fallbacks. A nil page yields the homepage defaults.
func BuildMeta(page *PageData, site *SiteConfig) *Meta {
	meta := &Meta{
		OGType:      "website",
		TwitterCard: "summary_large_image",
		OGSiteName:  site.SiteName,
		TwitterSite: site.TwitterHandle,
		Robots:      "index,follow",
	}

	if page == nil {
		meta.Title = site.SiteName
		meta.OGTitle = site.SiteName
		meta.Description = site.SiteDescription
		meta.OGDescription = site.SiteDescription
		meta.Canonical = site.SiteURL
		meta.OGURL = site.SiteURL
		meta.OGImage = util.AbsoluteURL(site.SiteURL, site.DefaultOGImage)
		return meta
	}

	if page.Article {
		meta.OGType = "article"
	}

	meta.Title = site.SiteName
	if page.Title != "" {
		meta.Title = page.Title + " | " + site.SiteName
		meta.OGTitle = page.Title
	}

	desc := page.Description
	if desc == "" {
		desc = site.SiteDescription
	}
	meta.Description = truncateText(desc, descriptionLimit)
	meta.OGDescription = meta.Description
	meta.Keywords = strings.Join(page.Tags, ", ")

	image := page.Image
	if image == "" {
		image = site.DefaultOGImage
	}
	meta.OGImage = util.AbsoluteURL(site.SiteURL, image)

	if page.Path != "" {
		meta.Canonical = util.AbsoluteURL(site.SiteURL, page.Path)
	}
	meta.OGURL = meta.Canonical

	if page.NoIndex {
		meta.Robots = "noindex,follow"
	}
	if page.Article {
		meta.ArticleSchema = BuildArticleSchema(page, site)
	}

	return meta
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	Keywords         string        `json:"keywords,omitempty"`
	DatePublished    string        `json:"datePublished,omitempty"`
	Author           *PersonSchema `json:"author,omitempty"`
	Publisher        *OrgSchema    `json:"publisher,omitempty"`
	MainEntityOfPage string        `json:"mainEntityOfPage,omitempty"`
}

// PersonSchema represents JSON-LD Person structured data.
type PersonSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *ImageSchema `json:"logo,omitempty"`
}

// ImageSchema represents JSON-LD ImageObject structured data.
type ImageSchema struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// BuildArticleSchema creates JSON-LD Article structured data for a post.
func BuildArticleSchema(page *PageData, site *SiteConfig) template.JS {
	if page == nil {
		return ""
	}

	article := ArticleSchema{
		Context:          "https://schema.org",
		Type:             "Article",
		Headline:         page.Title,
		Description:      page.Description,
		Image:            util.AbsoluteURL(site.SiteURL, page.Image),
		Keywords:         strings.Join(page.Tags, ", "),
		DatePublished:    page.PublishedAt,
		MainEntityOfPage: util.AbsoluteURL(site.SiteURL, page.Path),
		Publisher:        &OrgSchema{Type: "Organization", Name: site.SiteName},
	}
	if page.AuthorName != "" {
		article.Author = &PersonSchema{Type: "Person", Name: page.AuthorName}
	}
	if site.DefaultOGImage != "" {
		article.Publisher.Logo = &ImageSchema{
			Type: "ImageObject",
			URL:  util.AbsoluteURL(site.SiteURL, site.DefaultOGImage),
		}
	}

	return marshalJSONLD(article)
}

// marshalJSONLD marshals structured data to JSON-LD script tag content.
// encoding/json escapes <, > and & so the result cannot close the script.
func marshalJSONLD(v any) template.JS {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(data) //nolint:gosec // HTML-escaped JSON
}

// truncateText truncates text to maxLen runes at a word boundary.
func truncateText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	truncated := string([]rune(text)[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimSpace(truncated) + "..."
}
