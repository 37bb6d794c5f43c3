// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"

	"github.com/olegiv/ocms-site/internal/util"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapEntry is a routed document with an optional RFC 3339 lastmod.
type SitemapEntry struct {
	Path    string
	LastMod string
}

// SitemapBuilder builds sitemap XML from the site's content.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
	seen    map[string]bool
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
		seen:    make(map[string]bool),
	}
}

func (b *SitemapBuilder) add(path, lastMod string, freq ChangeFreq, priority string) {
	loc := util.AbsoluteURL(b.siteURL, path)
	if b.seen[loc] {
		return
	}
	b.seen[loc] = true
	b.urls = append(b.urls, SitemapURL{
		Loc:        loc,
		LastMod:    lastMod,
		ChangeFreq: freq,
		Priority:   priority,
	})
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.add("/", "", ChangeFreqDaily, "1.0")
}

// AddPosts adds blog posts.
func (b *SitemapBuilder) AddPosts(posts []SitemapEntry) {
	for _, p := range posts {
		b.add(p.Path, p.LastMod, ChangeFreqMonthly, "0.8")
	}
}

// AddPages adds static pages such as the FAQ.
func (b *SitemapBuilder) AddPages(pages []SitemapEntry) {
	for _, p := range pages {
		b.add(p.Path, p.LastMod, ChangeFreqWeekly, "0.6")
	}
}

// AddTags adds one tag archive per distinct tag slug.
func (b *SitemapBuilder) AddTags(tags []string) {
	for _, tag := range tags {
		if slug := util.Slugify(tag); slug != "" {
			b.add("/blog/tag/"+slug, "", ChangeFreqWeekly, "0.5")
		}
	}
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}
