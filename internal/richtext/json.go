// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"encoding/json"
	"fmt"
)

// wireNode is the decoding shape shared by every node type.
type wireNode struct {
	NodeType NodeType        `json:"nodeType"`
	Data     json.RawMessage `json:"data"`
	Content  []wireNode      `json:"content"`
	Value    string          `json:"value"`
	Marks    []wireMark      `json:"marks"`
}

type wireMark struct {
	Type string `json:"type"`
}

type wireBlock struct {
	NodeType NodeType        `json:"nodeType"`
	Data     json.RawMessage `json:"data"`
	Content  []any           `json:"content"`
}

type wireText struct {
	NodeType NodeType   `json:"nodeType"`
	Value    string     `json:"value"`
	Marks    []wireMark `json:"marks"`
	Data     struct{}   `json:"data"`
}

type wireSys struct {
	ID          string       `json:"id,omitempty"`
	Type        string       `json:"type,omitempty"`
	LinkType    string       `json:"linkType,omitempty"`
	ContentType *wireSysLink `json:"contentType,omitempty"`
}

type wireSysLink struct {
	Sys wireSys `json:"sys"`
}

type wireEntry struct {
	Sys    wireSys         `json:"sys"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

type wireMarkupFields struct {
	Content       string `json:"content"`
	Color         string `json:"color,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
}

type wireLinkFields struct {
	URL     string          `json:"url"`
	Title   string          `json:"title,omitempty"`
	Caption string          `json:"caption,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"`
}

type wireMediaFields struct {
	Title     string     `json:"title,omitempty"`
	Caption   string     `json:"caption,omitempty"`
	SourceURL string     `json:"sourceUrl,omitempty"`
	Width     *int       `json:"width,omitempty"`
	Height    *int       `json:"height,omitempty"`
	File      *wireEntry `json:"file,omitempty"`
}

type wireAssetFields struct {
	Title string    `json:"title,omitempty"`
	File  *wireFile `json:"file,omitempty"`
}

type wireFile struct {
	URL         string       `json:"url"`
	ContentType string       `json:"contentType"`
	Details     *wireDetails `json:"details,omitempty"`
}

type wireDetails struct {
	Image *wireImage `json:"image,omitempty"`
}

type wireImage struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UnmarshalJSON decodes the CMS rich-text wire format.
func (d *Document) UnmarshalJSON(b []byte) error {
	var root wireNode
	if err := json.Unmarshal(b, &root); err != nil {
		return fmt.Errorf("decoding rich text document: %w", err)
	}
	if root.NodeType != NodeDocument {
		return fmt.Errorf("decoding rich text document: unexpected root node type %q", root.NodeType)
	}
	d.Content = decodeNodes(root.Content)
	return nil
}

// MarshalJSON encodes the document in the CMS rich-text wire format.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireBlock{
		NodeType: NodeDocument,
		Data:     emptyData,
		Content:  encodeNodes(d.Content),
	})
}

var emptyData = json.RawMessage(`{}`)

func decodeNodes(wire []wireNode) []Node {
	nodes := make([]Node, 0, len(wire))
	for _, w := range wire {
		nodes = append(nodes, decodeNode(w))
	}
	return nodes
}

func decodeNode(w wireNode) Node {
	if level := headingLevel(w.NodeType); level > 0 {
		return &Heading{Level: level, Content: decodeNodes(w.Content)}
	}
	switch w.NodeType {
	case NodeText:
		t := &Text{Value: w.Value}
		for _, m := range w.Marks {
			if mark, ok := ParseMark(m.Type); ok {
				t.Marks = t.Marks.With(mark)
			}
		}
		return t
	case NodeParagraph:
		return &Paragraph{Content: decodeNodes(w.Content)}
	case NodeHorizontalRule:
		return &HorizontalRule{}
	case NodeOrderedList:
		return &OrderedList{Content: decodeNodes(w.Content)}
	case NodeUnorderedList:
		return &UnorderedList{Content: decodeNodes(w.Content)}
	case NodeListItem:
		return &ListItem{Content: decodeNodes(w.Content)}
	case NodeQuote:
		return &Quote{Content: decodeNodes(w.Content)}
	case NodeHyperlink:
		var data struct {
			URI string `json:"uri"`
		}
		_ = json.Unmarshal(w.Data, &data)
		return &Hyperlink{URI: data.URI, Content: decodeNodes(w.Content)}
	case NodeEmbeddedEntryBlock, NodeEmbeddedEntryInline:
		return decodeEmbeddedEntry(w)
	}
	u := &Unknown{NodeType: w.NodeType, Content: decodeNodes(w.Content)}
	if len(w.Data) > 0 {
		u.Data = append([]byte(nil), w.Data...)
	}
	return u
}

func decodeEmbeddedEntry(w wireNode) *EmbeddedEntry {
	e := &EmbeddedEntry{Inline: w.NodeType == NodeEmbeddedEntryInline}
	var data struct {
		Target *wireEntry `json:"target"`
	}
	if err := json.Unmarshal(w.Data, &data); err != nil || data.Target == nil {
		return e
	}
	e.EntryID = data.Target.Sys.ID
	if ct := data.Target.Sys.ContentType; ct != nil {
		e.ContentTypeID = ct.Sys.ID
	}
	e.Target = decodePayload(e.ContentTypeID, data.Target.Fields)
	return e
}

// decodePayload picks the payload variant. Unresolved targets carry no
// fields and decode to nil.
func decodePayload(contentType string, fields json.RawMessage) Payload {
	if len(fields) == 0 || string(fields) == "null" {
		return nil
	}
	if contentType == MarkupContentType {
		var f wireMarkupFields
		if err := json.Unmarshal(fields, &f); err != nil {
			return nil
		}
		return &MarkupFragment{Content: f.Content, Color: f.Color, Strikethrough: f.Strikethrough}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(fields, &keys); err != nil {
		return nil
	}
	if _, hasFile := keys["file"]; !hasFile {
		var f wireLinkFields
		if err := json.Unmarshal(fields, &f); err != nil {
			return nil
		}
		link := &EmbeddedLink{URL: f.URL, Title: f.Title, Caption: f.Caption}
		if len(f.Meta) > 0 {
			// A malformed stored meta is dropped; enrichment refills it.
			link.Meta, _ = DecodeMeta(f.Meta)
		}
		return link
	}

	var f wireMediaFields
	if err := json.Unmarshal(fields, &f); err != nil {
		return nil
	}
	media := &EmbeddedMedia{
		Title:     f.Title,
		Caption:   f.Caption,
		SourceURL: f.SourceURL,
		Width:     f.Width,
		Height:    f.Height,
	}
	if f.File != nil {
		media.File = decodeAsset(f.File)
	}
	return media
}

func decodeAsset(w *wireEntry) *Asset {
	var f wireAssetFields
	if len(w.Fields) == 0 || json.Unmarshal(w.Fields, &f) != nil || f.File == nil {
		return nil
	}
	a := &Asset{
		ID:          w.Sys.ID,
		Title:       f.Title,
		URL:         f.File.URL,
		ContentType: f.File.ContentType,
	}
	if f.File.Details != nil && f.File.Details.Image != nil {
		width, height := f.File.Details.Image.Width, f.File.Details.Image.Height
		a.Width, a.Height = &width, &height
	}
	return a
}

func encodeNodes(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, encodeNode(n))
	}
	return out
}

func encodeNode(n Node) any {
	switch v := n.(type) {
	case *Text:
		marks := make([]wireMark, 0, len(MarkOrder))
		for _, m := range v.Marks.Marks() {
			marks = append(marks, wireMark{Type: m.String()})
		}
		return wireText{NodeType: NodeText, Value: v.Value, Marks: marks}
	case *HorizontalRule:
		return wireBlock{NodeType: NodeHorizontalRule, Data: emptyData, Content: []any{}}
	case *Hyperlink:
		data, _ := json.Marshal(struct {
			URI string `json:"uri"`
		}{v.URI})
		return wireBlock{NodeType: NodeHyperlink, Data: data, Content: encodeNodes(v.Content)}
	case *EmbeddedEntry:
		return wireBlock{NodeType: v.Type(), Data: encodeEmbeddedEntry(v), Content: []any{}}
	case *Unknown:
		data := emptyData
		if len(v.Data) > 0 {
			data = v.Data
		}
		return wireBlock{NodeType: v.NodeType, Data: data, Content: encodeNodes(v.Content)}
	case Parent:
		return wireBlock{NodeType: v.Type(), Data: emptyData, Content: encodeNodes(v.Children())}
	}
	return wireBlock{NodeType: n.Type(), Data: emptyData, Content: []any{}}
}

func encodeEmbeddedEntry(e *EmbeddedEntry) json.RawMessage {
	target := wireEntry{Sys: wireSys{ID: e.EntryID, Type: "Entry"}}
	contentType := e.ContentTypeID
	if _, ok := e.Target.(*MarkupFragment); ok && contentType == "" {
		// Decoding tells fragments apart by content type only.
		contentType = MarkupContentType
	}
	if contentType != "" {
		target.Sys.ContentType = &wireSysLink{Sys: wireSys{ID: contentType, Type: "Link", LinkType: "ContentType"}}
	}
	var fields any
	switch p := e.Target.(type) {
	case *MarkupFragment:
		fields = wireMarkupFields{Content: p.Content, Color: p.Color, Strikethrough: p.Strikethrough}
	case *EmbeddedLink:
		f := wireLinkFields{URL: p.URL, Title: p.Title, Caption: p.Caption}
		if p.Meta != nil {
			f.Meta, _ = json.Marshal(p.Meta)
		}
		fields = f
	case *EmbeddedMedia:
		f := wireMediaFields{
			Title:     p.Title,
			Caption:   p.Caption,
			SourceURL: p.SourceURL,
			Width:     p.Width,
			Height:    p.Height,
		}
		if p.File != nil {
			f.File = encodeAsset(p.File)
		}
		fields = f
	}
	if fields != nil {
		target.Fields, _ = json.Marshal(fields)
	}
	data, _ := json.Marshal(struct {
		Target wireEntry `json:"target"`
	}{target})
	return data
}

func encodeAsset(a *Asset) *wireEntry {
	f := wireAssetFields{
		Title: a.Title,
		File:  &wireFile{URL: a.URL, ContentType: a.ContentType},
	}
	if a.Width != nil && a.Height != nil {
		f.File.Details = &wireDetails{Image: &wireImage{Width: *a.Width, Height: *a.Height}}
	}
	fields, _ := json.Marshal(f)
	return &wireEntry{Sys: wireSys{ID: a.ID, Type: "Asset"}, Fields: fields}
}
