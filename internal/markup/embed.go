// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package markup

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/olegiv/ocms-site/internal/richtext"
	"github.com/olegiv/ocms-site/internal/sanitize"
	"github.com/olegiv/ocms-site/internal/util"
)

// Media content types rendered as figures. Anything else is dropped.
var renderableMedia = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// embeddedEntry dispatches on the payload variant. A nil result means the
// node renders as nothing.
func (w *walker) embeddedEntry(e *richtext.EmbeddedEntry, path string) *nethtml.Node {
	switch p := e.Target.(type) {
	case *richtext.MarkupFragment:
		return markupFragment(p)
	case *richtext.EmbeddedLink:
		return w.embeddedLink(p, e.Inline)
	case *richtext.EmbeddedMedia:
		return w.embeddedMedia(p, e.Inline, e.Type(), path)
	case nil:
		w.fail(path, e.Type(), "target entry is unresolved")
	}
	return nil
}

// markupFragment assembles the styled fragment first so the color value is
// vetted by the same policy as the content.
func markupFragment(f *richtext.MarkupFragment) *nethtml.Node {
	var b strings.Builder
	if f.Color != "" {
		b.WriteString(`<span style="color: ` + html.EscapeString(f.Color) + `">`)
	} else {
		b.WriteString("<span>")
	}
	if f.Strikethrough {
		b.WriteString("<s>")
	}
	b.WriteString(f.Content)
	if f.Strikethrough {
		b.WriteString("</s>")
	}
	b.WriteString("</span>")
	return rawNode(sanitize.HTML(b.String()))
}

func (w *walker) embeddedLink(l *richtext.EmbeddedLink, inline bool) *nethtml.Node {
	c := w.classes
	figure := element(atom.Figure)
	extra, captionClass := "", c.linkCaption
	if inline {
		extra, captionClass = c.inline, c.inline
	}

	meta := l.Meta
	if meta == nil {
		meta = &richtext.LinkCard{URL: l.URL}
	}
	figure.AppendChild(w.preview(meta, extra))

	if l.Caption != "" {
		caption := element(atom.Figcaption, attrClass(captionClass)...)
		em := element(atom.Em)
		em.AppendChild(textNode(l.Caption))
		caption.AppendChild(em)
		figure.AppendChild(caption)
	}
	return figure
}

// preview renders link metadata either as provider HTML or as a card.
func (w *walker) preview(meta richtext.Meta, extra string) *nethtml.Node {
	switch m := meta.(type) {
	case *richtext.OEmbed:
		div := element(atom.Div, attrClass(joinClasses("embed-content", extra))...)
		div.AppendChild(rawNode(sanitize.Embed(m.HTML)))
		return div
	case *richtext.LinkCard:
		return w.card(m, extra)
	}
	return element(atom.Div, attrClass(joinClasses("embed-content", extra))...)
}

func (w *walker) card(m *richtext.LinkCard, extra string) *nethtml.Node {
	a := element(atom.A,
		nethtml.Attribute{Key: "href", Val: safeHref(m.URL)},
		nethtml.Attribute{Key: "target", Val: "_blank"},
		nethtml.Attribute{Key: "rel", Val: "noreferrer"},
	)
	box := element(atom.Div, attrClass(joinClasses("embed-content", w.classes.card, extra))...)
	a.AppendChild(box)

	if src := safeHref(m.Image); m.Image != "" && src != "#" {
		thumb := element(atom.Div, attrClass("w-full")...)
		thumb.AppendChild(element(atom.Img,
			nethtml.Attribute{Key: "src", Val: src},
			nethtml.Attribute{Key: "alt", Val: "link thumbnail image"},
			nethtml.Attribute{Key: "class", Val: "object-cover"},
		))
		box.AppendChild(thumb)
	}

	body := element(atom.Div, attrClass("p-3 text-black text-sm")...)
	title := m.Title
	if title == "" {
		title = html.EscapeString(m.URL)
	}
	body.AppendChild(sanitizedParagraph("font-bold", title))
	if m.Description != "" {
		body.AppendChild(sanitizedParagraph("", m.Description))
	}
	if m.SiteName != "" {
		body.AppendChild(sanitizedParagraph("text-gray-500 font-normal", m.SiteName))
	}
	box.AppendChild(body)
	return a
}

func sanitizedParagraph(class, content string) *nethtml.Node {
	p := element(atom.P, attrClass(class)...)
	p.AppendChild(rawNode(sanitize.HTML(content)))
	return p
}

func (w *walker) embeddedMedia(m *richtext.EmbeddedMedia, inline bool, t richtext.NodeType, path string) *nethtml.Node {
	if m.File == nil {
		w.fail(path, t, "media entry has no file")
		return nil
	}
	if !renderableMedia[m.File.ContentType] {
		return nil
	}

	width, height := m.File.Width, m.File.Height
	if inline {
		if m.Width != nil {
			width = m.Width
		}
		if m.Height != nil {
			height = m.Height
		}
	}
	if width == nil || height == nil {
		w.fail(path, t, "media file has no image dimensions")
		return nil
	}
	if m.File.URL == "" {
		w.fail(path, t, "media file has no url")
		return nil
	}

	c := w.classes
	figureClass, captionClass := c.figure, c.figcaption
	if inline {
		figureClass, captionClass = c.inline, c.inlineCap
	}
	figure := element(atom.Figure, attrClass(figureClass)...)
	figure.AppendChild(element(atom.Img,
		nethtml.Attribute{Key: "src", Val: safeHref(util.EnsureHTTPS(m.File.URL))},
		nethtml.Attribute{Key: "alt", Val: m.Title},
		nethtml.Attribute{Key: "width", Val: strconv.Itoa(*width)},
		nethtml.Attribute{Key: "height", Val: strconv.Itoa(*height)},
		nethtml.Attribute{Key: "loading", Val: "lazy"},
	))

	if m.Caption != "" {
		caption := element(atom.Figcaption, attrClass(captionClass)...)
		em := element(atom.Em)
		content := rawNode(sanitize.HTML(m.Caption))
		if m.SourceURL != "" {
			a := element(atom.A,
				nethtml.Attribute{Key: "href", Val: safeHref(m.SourceURL)},
				nethtml.Attribute{Key: "class", Val: c.link},
				nethtml.Attribute{Key: "target", Val: "_blank"},
				nethtml.Attribute{Key: "rel", Val: "noreferrer"},
			)
			a.AppendChild(content)
			em.AppendChild(a)
		} else {
			em.AppendChild(content)
		}
		caption.AppendChild(em)
		figure.AppendChild(caption)
	}
	return figure
}

// safeHref keeps relative references and http, https, mailto and tel URLs.
// Anything else, such as javascript: URLs, becomes "#".
func safeHref(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "#"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return raw
	}
	return "#"
}
