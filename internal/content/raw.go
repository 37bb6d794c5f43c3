// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"github.com/olegiv/ocms-site/internal/cms"
	"github.com/olegiv/ocms-site/internal/richtext"
)

// Raw schemas mirror the resolved CMS entry fields. Linked entries and
// assets arrive as full objects; a link the CMS could not resolve keeps
// sys.type "Link" and has no fields.

// RawImageDetails holds the pixel size of an image file.
type RawImageDetails struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RawFile is the file attached to an asset.
type RawFile struct {
	URL         string `json:"url"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Details     struct {
		Size  int64            `json:"size"`
		Image *RawImageDetails `json:"image"`
	} `json:"details"`
}

// RawAsset is a linked media asset.
type RawAsset struct {
	Sys    cms.Sys `json:"sys"`
	Fields struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		File        *RawFile `json:"file"`
	} `json:"fields"`
}

// HasFile reports whether the asset resolved and carries a file.
func (a *RawAsset) HasFile() bool {
	return a != nil && a.Fields.File != nil && a.Fields.File.URL != ""
}

// RawAuthor is a linked author entry.
type RawAuthor struct {
	Sys    cms.Sys `json:"sys"`
	Fields struct {
		Name     *string   `json:"name"`
		Avatar   *RawAsset `json:"avatar"`
		ShortBio *string   `json:"shortBio"`
		Position *string   `json:"position"`
		Email    *string   `json:"email"`
		Twitter  *string   `json:"twitter"`
		Facebook *string   `json:"facebook"`
		Github   *string   `json:"github"`
	} `json:"fields"`
}

// Resolved reports whether the author link was resolved to an entry.
func (a *RawAuthor) Resolved() bool {
	return a != nil && a.Sys.Type != "Link"
}

// RawPost is the field set of a post entry.
type RawPost struct {
	Title        string             `json:"title"`
	Slug         string             `json:"slug"`
	Subtitle     *string            `json:"subtitle"`
	Description  *string            `json:"description"`
	Date         string             `json:"date"`
	Body         *richtext.Document `json:"body"`
	Tags         []string           `json:"tags"`
	FeatureImage *RawAsset          `json:"featureImage"`
	FullHeader   *bool              `json:"fullHeader"`
	Author       *RawAuthor         `json:"author"`
}

// Validate checks the fields every post must have.
func (p *RawPost) Validate() error {
	switch {
	case p.Title == "":
		return &ValidationError{Kind: KindPost, Field: "title", Reason: "is required"}
	case p.Slug == "":
		return &ValidationError{Kind: KindPost, Field: "slug", Reason: "is required"}
	case p.Date == "":
		return &ValidationError{Kind: KindPost, Field: "date", Reason: "is required"}
	}
	return nil
}

// RawPage is the field set of a page entry.
type RawPage struct {
	Title    string             `json:"title"`
	Slug     string             `json:"slug"`
	Headline *string            `json:"headline"`
	Body     *richtext.Document `json:"body"`
}

// Validate checks the fields every page must have.
func (p *RawPage) Validate() error {
	switch {
	case p.Title == "":
		return &ValidationError{Kind: KindPage, Field: "title", Reason: "is required"}
	case p.Slug == "":
		return &ValidationError{Kind: KindPage, Field: "slug", Reason: "is required"}
	}
	return nil
}

// RawFAQItem is the field set of an FAQ entry.
type RawFAQItem struct {
	ID       *int    `json:"id"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// Validate rejects negative ordering ids. Every other field is optional.
func (f *RawFAQItem) Validate() error {
	if f.ID != nil && *f.ID < 0 {
		return &ValidationError{Kind: KindFAQItem, Field: "id", Reason: "must not be negative"}
	}
	return nil
}

type validator interface {
	Validate() error
}

// decodeRaw decodes the entry fields into v and validates them.
func decodeRaw(e cms.Entry, v validator) error {
	if err := e.DecodeFields(v); err != nil {
		return err
	}
	return v.Validate()
}
