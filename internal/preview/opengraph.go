// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package preview

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/olegiv/ocms-site/internal/richtext"
	"github.com/olegiv/ocms-site/internal/sanitize"
)

// pageMeta collects the head metadata relevant to a link card. The first
// value seen for a key wins.
type pageMeta struct {
	values map[string]string
	title  string
}

func (m *pageMeta) set(key, value string) {
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if _, ok := m.values[key]; !ok {
		m.values[key] = value
	}
}

func (m *pageMeta) first(keys ...string) string {
	for _, k := range keys {
		if v := m.values[k]; v != "" {
			return v
		}
	}
	return ""
}

// parseLinkCard builds a card from OpenGraph, Twitter and plain HTML head
// metadata. Relative image URLs are resolved against pageURL.
func parseLinkCard(body []byte, pageURL string) (*richtext.LinkCard, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	meta := &pageMeta{values: make(map[string]string)}
	collectMeta(doc, meta)

	card := &richtext.LinkCard{
		URL:         pageURL,
		Title:       sanitize.HTML(meta.first("og:title", "twitter:title")),
		Description: sanitize.HTML(meta.first("og:description", "twitter:description", "description")),
		SiteName:    sanitize.HTML(meta.first("og:site_name", "application-name")),
		Image:       resolveImage(pageURL, meta.first("og:image", "og:image:url", "twitter:image")),
	}
	if card.Title == "" {
		card.Title = sanitize.HTML(meta.title)
	}
	if card.SiteName == "" {
		if u, err := url.Parse(pageURL); err == nil {
			card.SiteName = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}
	return card, nil
}

func collectMeta(n *html.Node, meta *pageMeta) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Meta:
			key := attr(n, "property")
			if key == "" {
				key = attr(n, "name")
			}
			meta.set(strings.ToLower(key), attr(n, "content"))
		case atom.Title:
			if meta.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				meta.title = strings.TrimSpace(n.FirstChild.Data)
			}
		case atom.Body:
			// Head metadata only.
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectMeta(c, meta)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveImage returns an absolute http(s) image URL or "".
func resolveImage(pageURL, image string) string {
	if image == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(image)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
