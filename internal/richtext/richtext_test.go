// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "nodeType": "document",
  "data": {},
  "content": [
    {"nodeType": "heading-2", "data": {}, "content": [
      {"nodeType": "text", "value": "Install on ", "marks": [], "data": {}},
      {"nodeType": "hyperlink", "data": {"uri": "#mac"}, "content": [
        {"nodeType": "text", "value": "macOS", "marks": [{"type": "code"}, {"type": "bold"}], "data": {}}
      ]}
    ]},
    {"nodeType": "paragraph", "data": {}, "content": [
      {"nodeType": "text", "value": "See ", "marks": [], "data": {}},
      {"nodeType": "embedded-entry-inline", "data": {"target": {
        "sys": {"id": "m1", "type": "Entry", "contentType": {"sys": {"id": "markup", "type": "Link", "linkType": "ContentType"}}},
        "fields": {"content": "<b>hi</b>", "color": "red", "strikethrough": true}
      }}, "content": []}
    ]},
    {"nodeType": "embedded-entry-block", "data": {"target": {
      "sys": {"id": "l1", "type": "Entry", "contentType": {"sys": {"id": "embeddedLink"}}},
      "fields": {"url": "https://example.com/a", "caption": "A link"}
    }}, "content": []},
    {"nodeType": "embedded-entry-block", "data": {"target": {
      "sys": {"id": "e1", "type": "Entry", "contentType": {"sys": {"id": "embeddedMedia"}}},
      "fields": {"title": "Chart", "caption": "Source", "sourceUrl": "https://example.com/src",
        "file": {"sys": {"id": "a1", "type": "Asset"}, "fields": {"title": "chart", "file": {
          "url": "//images.example.com/chart.png", "contentType": "image/png",
          "details": {"image": {"width": 640, "height": 480}}}}}}
    }}, "content": []},
    {"nodeType": "embedded-entry-block", "data": {"target": {"sys": {"id": "x", "type": "Link", "linkType": "Entry"}}}, "content": []},
    {"nodeType": "table", "data": {"layout":"wide"}, "content": [
      {"nodeType": "paragraph", "data": {}, "content": [{"nodeType": "text", "value": "cell", "marks": [], "data": {}}]}
    ]},
    {"nodeType": "hr", "data": {}, "content": []}
  ]
}`

func decodeSample(t *testing.T) *Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleDoc), &doc))
	return &doc
}

func TestDocumentUnmarshal(t *testing.T) {
	doc := decodeSample(t)
	require.Len(t, doc.Content, 7)

	h, ok := doc.Content[0].(*Heading)
	require.True(t, ok, "first node should be a heading, got %T", doc.Content[0])
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, NodeHeading2, h.Type())

	link := h.Content[1].(*Hyperlink)
	assert.Equal(t, "#mac", link.URI)
	text := link.Content[0].(*Text)
	assert.True(t, text.Marks.Has(MarkBold))
	assert.True(t, text.Marks.Has(MarkCode))
	assert.False(t, text.Marks.Has(MarkItalic))

	inline := doc.Content[1].(*Paragraph).Content[1].(*EmbeddedEntry)
	assert.True(t, inline.Inline)
	assert.Equal(t, "markup", inline.ContentTypeID)
	assert.Equal(t, &MarkupFragment{Content: "<b>hi</b>", Color: "red", Strikethrough: true}, inline.Target)

	embed := doc.Content[2].(*EmbeddedEntry)
	assert.False(t, embed.Inline)
	assert.Equal(t, &EmbeddedLink{URL: "https://example.com/a", Caption: "A link"}, embed.Target)

	media := doc.Content[3].(*EmbeddedEntry).Target.(*EmbeddedMedia)
	require.NotNil(t, media.File)
	assert.Equal(t, "image/png", media.File.ContentType)
	assert.Equal(t, 640, *media.File.Width)
	assert.Equal(t, 480, *media.File.Height)
	assert.Nil(t, media.Width)

	unresolved := doc.Content[4].(*EmbeddedEntry)
	assert.Nil(t, unresolved.Target)

	unknown := doc.Content[5].(*Unknown)
	assert.Equal(t, NodeType("table"), unknown.Type())
	assert.Len(t, unknown.Children(), 1)

	_, ok = doc.Content[6].(*HorizontalRule)
	assert.True(t, ok)
}

func TestDocumentUnmarshalRejectsNonDocumentRoot(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"nodeType":"paragraph","content":[]}`), &doc)
	assert.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := decodeSample(t)
	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var again Document
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, doc, &again)
}

func TestMarkupFragmentWithoutContentTypeRoundTrips(t *testing.T) {
	fragment := &MarkupFragment{Content: "hi", Color: "red", Strikethrough: true}
	doc := &Document{Content: []Node{
		&EmbeddedEntry{EntryID: "m1", Target: fragment},
	}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Content, 1)

	entry, ok := decoded.Content[0].(*EmbeddedEntry)
	require.True(t, ok)
	assert.Equal(t, MarkupContentType, entry.ContentTypeID)
	assert.Equal(t, fragment, entry.Target)
}

func TestTextMarksEncodeInFixedOrder(t *testing.T) {
	doc := &Document{Content: []Node{
		&Paragraph{Content: []Node{&Text{Value: "x", Marks: NewMarkSet(MarkCode, MarkBold)}}},
	}}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodeType":"document","data":{},"content":[
		{"nodeType":"paragraph","data":{},"content":[
			{"nodeType":"text","value":"x","marks":[{"type":"bold"},{"type":"code"}],"data":{}}
		]}
	]}`, string(out))
}

func TestIsLocalURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"#faq-3", true},
		{"#mac", true},
		{"/faq", true},
		{"", true},
		{"http://example.com", false},
		{"https://example.com", false},
		{"/go?to=https://example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := IsLocalURI(tt.uri); got != tt.want {
				t.Errorf("IsLocalURI(%q) = %v, want %v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestAnchorID(t *testing.T) {
	tests := []struct {
		name    string
		heading *Heading
		want    string
	}{
		{
			name:    "local fragment",
			heading: &Heading{Level: 1, Content: []Node{&Hyperlink{URI: "#mac"}}},
			want:    "mac",
		},
		{
			name:    "external link",
			heading: &Heading{Level: 1, Content: []Node{&Hyperlink{URI: "https://example.com"}}},
			want:    "",
		},
		{
			name:    "no links",
			heading: &Heading{Level: 2, Content: []Node{&Text{Value: "plain"}}},
			want:    "",
		},
		{
			name: "last local link wins",
			heading: &Heading{Level: 3, Content: []Node{
				&Hyperlink{URI: "#first"},
				&Hyperlink{URI: "https://example.com#nope"},
				&Hyperlink{URI: "#second"},
			}},
			want: "second",
		},
		{
			name:    "local path without fragment",
			heading: &Heading{Level: 4, Content: []Node{&Hyperlink{URI: "/faq"}}},
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnchorID(tt.heading); got != tt.want {
				t.Errorf("AnchorID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkSetString(t *testing.T) {
	s := NewMarkSet(MarkCode, MarkBold)
	if got := s.String(); got != "bold+code" {
		t.Errorf("String() = %q, want %q", got, "bold+code")
	}
	if _, ok := ParseMark("superscript"); ok {
		t.Error("ParseMark(superscript) should not be recognised")
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := decodeSample(t)
	clone := doc.Clone()
	require.Equal(t, doc, clone)

	links := EmbeddedLinks(clone)
	require.Len(t, links, 1)
	links[0].Meta = &LinkCard{URL: links[0].URL}

	assert.Nil(t, EmbeddedLinks(doc)[0].Meta)
	media := clone.Content[3].(*EmbeddedEntry).Target.(*EmbeddedMedia)
	*media.File.Width = 1
	assert.Equal(t, 640, *doc.Content[3].(*EmbeddedEntry).Target.(*EmbeddedMedia).File.Width)
}

func TestEmbeddedLinksFindsNestedEntries(t *testing.T) {
	doc := &Document{Content: []Node{
		&EmbeddedEntry{Target: &EmbeddedLink{URL: "https://a.example"}},
		&UnorderedList{Content: []Node{
			&ListItem{Content: []Node{
				&Paragraph{Content: []Node{
					&EmbeddedEntry{Inline: true, Target: &EmbeddedLink{URL: "https://b.example"}},
					&EmbeddedEntry{Inline: true, Target: &MarkupFragment{Content: "x"}},
				}},
			}},
		}},
	}}
	links := EmbeddedLinks(doc)
	require.Len(t, links, 2)
	assert.Equal(t, "https://a.example", links[0].URL)
	assert.Equal(t, "https://b.example", links[1].URL)
}

func TestDecodeMeta(t *testing.T) {
	m, err := DecodeMeta([]byte(`{"html":"<iframe></iframe>","width":"480","height":null,"url":"https://v.example"}`))
	require.NoError(t, err)
	o, ok := m.(*OEmbed)
	require.True(t, ok)
	assert.Equal(t, Dimension(480), o.Width)
	assert.Equal(t, Dimension(0), o.Height)
	assert.Equal(t, "https://v.example", MetaURL(m))

	m, err = DecodeMeta([]byte(`{"url":"https://x.example","title":"X","site_name":"Ex"}`))
	require.NoError(t, err)
	assert.Equal(t, &LinkCard{URL: "https://x.example", Title: "X", SiteName: "Ex"}, m)

	m, err = DecodeMeta([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = DecodeMeta([]byte(`[`))
	assert.Error(t, err)
}
