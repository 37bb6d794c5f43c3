// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package richtext models the CMS rich-text document format: a tree of block
// and inline nodes with marked-up text leaves and embedded entry references.
package richtext

import (
	"strconv"
	"strings"
)

// NodeType is the wire discriminant carried in the nodeType field.
type NodeType string

// Node types understood by the renderer.
const (
	NodeDocument            NodeType = "document"
	NodeParagraph           NodeType = "paragraph"
	NodeHeading1            NodeType = "heading-1"
	NodeHeading2            NodeType = "heading-2"
	NodeHeading3            NodeType = "heading-3"
	NodeHeading4            NodeType = "heading-4"
	NodeHorizontalRule      NodeType = "hr"
	NodeOrderedList         NodeType = "ordered-list"
	NodeUnorderedList       NodeType = "unordered-list"
	NodeListItem            NodeType = "list-item"
	NodeQuote               NodeType = "blockquote"
	NodeHyperlink           NodeType = "hyperlink"
	NodeEmbeddedEntryBlock  NodeType = "embedded-entry-block"
	NodeEmbeddedEntryInline NodeType = "embedded-entry-inline"
	NodeText                NodeType = "text"
)

// MaxHeadingLevel is the deepest heading level with a dedicated node.
const MaxHeadingLevel = 4

// Node is a rich-text tree node. The set of implementations is closed:
// only types in this package satisfy it.
type Node interface {
	Type() NodeType
	node()
}

// Parent is implemented by nodes that own child nodes.
type Parent interface {
	Node
	Children() []Node
}

// Document is the root of a rich-text tree.
type Document struct {
	Content []Node
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Content []Node
}

// Heading is a section heading of level 1 to 4.
type Heading struct {
	Level   int
	Content []Node
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// OrderedList holds ListItem children.
type OrderedList struct {
	Content []Node
}

// UnorderedList holds ListItem children.
type UnorderedList struct {
	Content []Node
}

// ListItem is a single list entry.
type ListItem struct {
	Content []Node
}

// Quote is a block quotation.
type Quote struct {
	Content []Node
}

// Hyperlink is an inline link to URI.
type Hyperlink struct {
	URI     string
	Content []Node
}

// EmbeddedEntry references another CMS entry. Inline distinguishes
// embedded-entry-inline from embedded-entry-block.
type EmbeddedEntry struct {
	Inline        bool
	EntryID       string
	ContentTypeID string
	Target        Payload
}

// Text is a leaf run of characters with optional marks.
type Text struct {
	Value string
	Marks MarkSet
}

// Unknown preserves node types outside the supported set so that their
// children are not lost.
type Unknown struct {
	NodeType NodeType
	Data     []byte
	Content  []Node
}

func (*Paragraph) Type() NodeType      { return NodeParagraph }
func (*HorizontalRule) Type() NodeType { return NodeHorizontalRule }
func (*OrderedList) Type() NodeType    { return NodeOrderedList }
func (*UnorderedList) Type() NodeType  { return NodeUnorderedList }
func (*ListItem) Type() NodeType       { return NodeListItem }
func (*Quote) Type() NodeType          { return NodeQuote }
func (*Hyperlink) Type() NodeType      { return NodeHyperlink }
func (*Text) Type() NodeType           { return NodeText }
func (n *Unknown) Type() NodeType      { return n.NodeType }

// Type returns heading-1 through heading-4.
func (n *Heading) Type() NodeType {
	return NodeType("heading-" + strconv.Itoa(n.Level))
}

// Type returns the block or inline embedded entry type.
func (n *EmbeddedEntry) Type() NodeType {
	if n.Inline {
		return NodeEmbeddedEntryInline
	}
	return NodeEmbeddedEntryBlock
}

func (*Paragraph) node()      {}
func (*Heading) node()        {}
func (*HorizontalRule) node() {}
func (*OrderedList) node()    {}
func (*UnorderedList) node()  {}
func (*ListItem) node()       {}
func (*Quote) node()          {}
func (*Hyperlink) node()      {}
func (*EmbeddedEntry) node()  {}
func (*Text) node()           {}
func (*Unknown) node()        {}

func (n *Paragraph) Children() []Node     { return n.Content }
func (n *Heading) Children() []Node       { return n.Content }
func (n *OrderedList) Children() []Node   { return n.Content }
func (n *UnorderedList) Children() []Node { return n.Content }
func (n *ListItem) Children() []Node      { return n.Content }
func (n *Quote) Children() []Node         { return n.Content }
func (n *Hyperlink) Children() []Node     { return n.Content }
func (n *Unknown) Children() []Node       { return n.Content }

// headingLevel returns the level for a heading node type, or 0.
func headingLevel(t NodeType) int {
	s, ok := strings.CutPrefix(string(t), "heading-")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(s)
	if err != nil || level < 1 || level > MaxHeadingLevel {
		return 0
	}
	return level
}

// protocols mark a URI as pointing off-site.
var protocols = []string{"https://", "http://"}

// IsLocalURI reports whether uri stays on the current page or site, i.e. it
// carries no http(s) scheme. "#mac" and "/faq" are local.
func IsLocalURI(uri string) bool {
	for _, p := range protocols {
		if strings.Contains(uri, p) {
			return false
		}
	}
	return true
}

// AnchorID returns the fragment of the last local hyperlink among the
// immediate children of n, or "" if there is none.
func AnchorID(n Parent) string {
	id := ""
	for _, child := range n.Children() {
		link, ok := child.(*Hyperlink)
		if !ok || !IsLocalURI(link.URI) {
			continue
		}
		_, fragment, _ := strings.Cut(link.URI, "#")
		id = fragment
	}
	return id
}
