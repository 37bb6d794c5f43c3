// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markup renders rich-text documents into HTML node trees.
//
// Rendering is a pure recursive walk: the same document and options always
// produce the same tree. Markup that bypasses escaping (markup fragments,
// oEmbed HTML, link card fields and media captions) is passed through the
// sanitize package and attached as raw nodes.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/olegiv/ocms-site/internal/richtext"
)

// Options are per call site overrides.
type Options struct {
	Profile Profile
	// Classes is set on the container element.
	Classes string
	// HeadingClasses are appended to every h1-h4.
	HeadingClasses string
}

// RenderError describes a node that could not be rendered and was left out
// of the output.
type RenderError struct {
	Path     string
	NodeType richtext.NodeType
	Reason   string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s at %s: %s", e.NodeType, e.Path, e.Reason)
}

// Renderer turns rich-text documents into markup. The zero value is ready
// to use and safe for concurrent use.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render returns a div holding the rendered document. Nodes that cannot be
// rendered are elided and reported as *RenderError values joined into the
// returned error; the tree is still complete for everything else.
func (r *Renderer) Render(doc *richtext.Document, opts Options) (*html.Node, error) {
	root := element(atom.Div, attrClass(opts.Classes)...)
	if doc == nil {
		return root, nil
	}
	w := &walker{opts: opts, classes: opts.Profile.classes()}
	for i, n := range doc.Content {
		w.appendNode(root, n, "content["+strconv.Itoa(i)+"]")
	}
	return root, errors.Join(w.errs...)
}

// RenderHTML renders doc and serializes the result for html/template.
func (r *Renderer) RenderHTML(doc *richtext.Document, opts Options) (template.HTML, error) {
	root, renderErr := r.Render(doc, opts)
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("serializing markup: %w", err)
	}
	return template.HTML(buf.String()), renderErr //nolint:gosec // built from escaped text and sanitized raw nodes
}

type walker struct {
	opts    Options
	classes classSet
	errs    []error
}

func (w *walker) fail(path string, t richtext.NodeType, reason string) {
	w.errs = append(w.errs, &RenderError{Path: path, NodeType: t, Reason: reason})
}

func (w *walker) appendChildren(parent *html.Node, children []richtext.Node, path string) {
	for i, c := range children {
		w.appendNode(parent, c, path+".content["+strconv.Itoa(i)+"]")
	}
}

// appendNode renders n and appends the result to parent.
func (w *walker) appendNode(parent *html.Node, n richtext.Node, path string) {
	c := w.classes
	switch v := n.(type) {
	case nil:
		return
	case *richtext.Text:
		parent.AppendChild(w.text(v))
	case *richtext.Paragraph:
		p := element(atom.P, attrClass(c.paragraph)...)
		w.appendChildren(p, v.Content, path)
		parent.AppendChild(p)
	case *richtext.Heading:
		parent.AppendChild(w.heading(v, path))
	case *richtext.HorizontalRule:
		parent.AppendChild(element(atom.Hr, attrClass(c.hr)...))
	case *richtext.OrderedList:
		ol := element(atom.Ol, attrClass(c.ordered)...)
		w.appendChildren(ol, v.Content, path)
		parent.AppendChild(ol)
	case *richtext.UnorderedList:
		ul := element(atom.Ul, attrClass(c.unordered)...)
		w.appendChildren(ul, v.Content, path)
		parent.AppendChild(ul)
	case *richtext.ListItem:
		li := element(atom.Li)
		w.appendChildren(li, v.Content, path)
		parent.AppendChild(li)
	case *richtext.Quote:
		outer := element(atom.Div, attrClass(c.quoteOuter)...)
		inner := element(atom.Blockquote, attrClass(c.quoteInner)...)
		w.appendChildren(inner, v.Content, path)
		outer.AppendChild(inner)
		parent.AppendChild(outer)
	case *richtext.Hyperlink:
		parent.AppendChild(w.hyperlink(v, path))
	case *richtext.EmbeddedEntry:
		if out := w.embeddedEntry(v, path); out != nil {
			parent.AppendChild(out)
		}
	case *richtext.Unknown:
		w.appendChildren(parent, v.Content, path)
	}
}

// text renders a leaf with its marks, innermost first. Newlines become <br>.
func (w *walker) text(t *richtext.Text) *html.Node {
	var node *html.Node
	lines := strings.Split(t.Value, "\n")
	if len(lines) == 1 {
		node = textNode(t.Value)
	} else {
		node = &html.Node{Type: html.DocumentNode}
		for i, line := range lines {
			if i > 0 {
				node.AppendChild(element(atom.Br))
			}
			if line != "" {
				node.AppendChild(textNode(line))
			}
		}
	}
	for _, m := range t.Marks.Marks() {
		node = wrapMark(m, node)
	}
	if node.Type == html.DocumentNode {
		// Unmarked multi-line text: hand the fragments back inside a span.
		span := element(atom.Span)
		moveChildren(span, node)
		return span
	}
	return node
}

func wrapMark(m richtext.Mark, inner *html.Node) *html.Node {
	var outer, target *html.Node
	switch m {
	case richtext.MarkBold:
		outer = element(atom.Span)
		target = element(atom.Strong, attrClass("font-bold")...)
		outer.AppendChild(target)
	case richtext.MarkItalic:
		outer = element(atom.Span)
		target = element(atom.Em, attrClass("italic")...)
		outer.AppendChild(target)
	case richtext.MarkUnderline:
		outer = element(atom.Span, attrClass("underline")...)
		target = outer
	case richtext.MarkCode:
		outer = element(atom.Code, attrClass("font-mono tracking-wide")...)
		target = outer
	default:
		return inner
	}
	if inner.Type == html.DocumentNode {
		moveChildren(target, inner)
	} else {
		target.AppendChild(inner)
	}
	return outer
}

func (w *walker) heading(h *richtext.Heading, path string) *html.Node {
	level := min(max(h.Level, 1), richtext.MaxHeadingLevel)
	tags := [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4}
	var attrs []html.Attribute
	if id := richtext.AnchorID(h); id != "" {
		attrs = append(attrs, html.Attribute{Key: "id", Val: id})
	}
	attrs = append(attrs, attrClass(joinClasses(w.classes.headings[level-1], w.opts.HeadingClasses))...)
	el := element(tags[level-1], attrs...)
	w.appendChildren(el, h.Content, path)
	return el
}

func (w *walker) hyperlink(l *richtext.Hyperlink, path string) *html.Node {
	target, scroll := "_blank", "false"
	if richtext.IsLocalURI(l.URI) {
		target, scroll = "_self", "true"
	}
	a := element(atom.A,
		html.Attribute{Key: "href", Val: safeHref(l.URI)},
		html.Attribute{Key: "class", Val: w.classes.link},
		html.Attribute{Key: "target", Val: target},
		html.Attribute{Key: "rel", Val: "noreferrer"},
		html.Attribute{Key: "data-scroll", Val: scroll},
	)
	w.appendChildren(a, l.Content, path)
	return a
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// rawNode carries sanitized markup that must not be escaped again.
func rawNode(sanitized string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: sanitized}
}

func attrClass(class string) []html.Attribute {
	if class == "" {
		return nil
	}
	return []html.Attribute{{Key: "class", Val: class}}
}

func moveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}
