// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize is the single boundary for markup that is injected into
// rendered pages without escaping. Every trusted injection point in the
// renderer and the link-preview fetcher goes through it.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// htmlPolicy extends the UGC policy with strikethrough and span colors
	// used by markup fragments.
	htmlPolicy = newHTMLPolicy()

	// embedPolicy additionally allows provider iframes for oEmbed content.
	embedPolicy = newEmbedPolicy()
)

var (
	embedClass = regexp.MustCompile(`^[\w\- ]*$`)
	allowList  = regexp.MustCompile(`^[\w\-; ()=*'".:/]*$`)
)

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("s", "span")
	p.AllowStyles("color").OnElements("span")
	return p
}

func newEmbedPolicy() *bluemonday.Policy {
	p := newHTMLPolicy()
	p.AllowElements("iframe", "div")
	p.AllowAttrs("src", "title", "loading", "referrerpolicy").OnElements("iframe")
	p.AllowAttrs("width", "height", "frameborder").Matching(bluemonday.Number).OnElements("iframe")
	p.AllowAttrs("allowfullscreen").OnElements("iframe")
	p.AllowAttrs("allow").Matching(allowList).OnElements("iframe")
	p.AllowAttrs("class").Matching(embedClass).OnElements("div", "blockquote", "iframe")
	return p
}

// HTML sanitizes user or CMS supplied markup. It is idempotent on its own
// output.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return htmlPolicy.Sanitize(s)
}

// Embed sanitizes provider-supplied oEmbed markup, keeping https iframes.
func Embed(s string) string {
	if s == "" {
		return ""
	}
	return embedPolicy.Sanitize(s)
}
