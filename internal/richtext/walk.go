// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

// Walk visits every node depth-first in document order. Returning false from
// fn skips the node's children.
func Walk(doc *Document, fn func(Node) bool) {
	if doc == nil {
		return
	}
	walkNodes(doc.Content, fn)
}

func walkNodes(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !fn(n) {
			continue
		}
		if p, ok := n.(Parent); ok {
			walkNodes(p.Children(), fn)
		}
	}
}

// EmbeddedLinks returns the link payloads of every embedded entry in doc
// that is an embedded link, in document order.
func EmbeddedLinks(doc *Document) []*EmbeddedLink {
	var links []*EmbeddedLink
	Walk(doc, func(n Node) bool {
		if e, ok := n.(*EmbeddedEntry); ok {
			if link, ok := e.Target.(*EmbeddedLink); ok {
				links = append(links, link)
			}
		}
		return true
	})
	return links
}

// Clone returns a deep copy of doc sharing no nodes, payloads or metas.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Content: cloneNodes(d.Content)}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *Paragraph:
		return &Paragraph{Content: cloneNodes(v.Content)}
	case *Heading:
		return &Heading{Level: v.Level, Content: cloneNodes(v.Content)}
	case *HorizontalRule:
		return &HorizontalRule{}
	case *OrderedList:
		return &OrderedList{Content: cloneNodes(v.Content)}
	case *UnorderedList:
		return &UnorderedList{Content: cloneNodes(v.Content)}
	case *ListItem:
		return &ListItem{Content: cloneNodes(v.Content)}
	case *Quote:
		return &Quote{Content: cloneNodes(v.Content)}
	case *Hyperlink:
		return &Hyperlink{URI: v.URI, Content: cloneNodes(v.Content)}
	case *EmbeddedEntry:
		c := *v
		c.Target = clonePayload(v.Target)
		return &c
	case *Text:
		c := *v
		return &c
	case *Unknown:
		c := &Unknown{NodeType: v.NodeType, Content: cloneNodes(v.Content)}
		if v.Data != nil {
			c.Data = append([]byte(nil), v.Data...)
		}
		return c
	}
	return nil
}
