// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MarkupContentType is the content type id of inline markup fragments.
const MarkupContentType = "markup"

// Payload is the decoded target of an EmbeddedEntry. Exactly one of
// *MarkupFragment, *EmbeddedLink or *EmbeddedMedia applies.
type Payload interface {
	payload()
}

// MarkupFragment is raw inline HTML authored in the CMS with optional styling.
type MarkupFragment struct {
	Content       string
	Color         string
	Strikethrough bool
}

// EmbeddedLink is a URL that is rendered as a link preview. Meta is filled
// by link-preview enrichment.
type EmbeddedLink struct {
	URL     string
	Title   string
	Caption string
	Meta    Meta
}

// EmbeddedMedia is an asset wrapper with an optional caption. Width and
// Height override the asset dimensions for inline embeds.
type EmbeddedMedia struct {
	Title     string
	Caption   string
	SourceURL string
	Width     *int
	Height    *int
	File      *Asset
}

// Asset is a CMS media file. Width and Height are nil when the asset carries
// no image details.
type Asset struct {
	ID          string
	Title       string
	URL         string
	ContentType string
	Width       *int
	Height      *int
}

func (*MarkupFragment) payload() {}
func (*EmbeddedLink) payload()   {}
func (*EmbeddedMedia) payload()  {}

// Meta is link-preview metadata: either *OEmbed or *LinkCard.
type Meta interface {
	meta()
}

// OEmbed is a provider-supplied rich embed.
type OEmbed struct {
	Type         string    `json:"type,omitempty"`
	HTML         string    `json:"html"`
	Width        Dimension `json:"width,omitempty"`
	Height       Dimension `json:"height,omitempty"`
	Title        string    `json:"title,omitempty"`
	ProviderName string    `json:"provider_name,omitempty"`
	URL          string    `json:"url,omitempty"`
}

// LinkCard is the fallback preview built from page metadata.
type LinkCard struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SiteName    string `json:"site_name"`
}

func (*OEmbed) meta()   {}
func (*LinkCard) meta() {}

// Dimension is a pixel size that providers send as a number, a numeric
// string, or null.
type Dimension int

// UnmarshalJSON accepts 480, "480" and null.
func (d *Dimension) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Values like "100%" carry no pixel size.
		*d = 0
		return nil
	}
	*d = Dimension(v)
	return nil
}

// DecodeMeta decodes a meta object; objects with an html member are oEmbed.
func DecodeMeta(data []byte) (Meta, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decoding meta: %w", err)
	}
	if keys == nil {
		return nil, nil
	}
	if _, ok := keys["html"]; ok {
		var o OEmbed
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("decoding oembed meta: %w", err)
		}
		return &o, nil
	}
	var c LinkCard
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding link card meta: %w", err)
	}
	return &c, nil
}

// MetaURL returns the URL a meta object points at.
func MetaURL(m Meta) string {
	switch v := m.(type) {
	case *OEmbed:
		return v.URL
	case *LinkCard:
		return v.URL
	}
	return ""
}

func cloneMeta(m Meta) Meta {
	switch v := m.(type) {
	case *OEmbed:
		c := *v
		return &c
	case *LinkCard:
		c := *v
		return &c
	}
	return nil
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case *MarkupFragment:
		c := *v
		return &c
	case *EmbeddedLink:
		c := *v
		c.Meta = cloneMeta(v.Meta)
		return &c
	case *EmbeddedMedia:
		c := *v
		c.Width = cloneInt(v.Width)
		c.Height = cloneInt(v.Height)
		if v.File != nil {
			f := *v.File
			f.Width = cloneInt(v.File.Width)
			f.Height = cloneInt(v.File.Height)
			c.File = &f
		}
		return &c
	}
	return nil
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
