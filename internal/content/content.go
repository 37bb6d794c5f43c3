// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content converts resolved CMS entries into typed site records.
//
// Optional fields are pointers and are never tagged omitempty, so a missing
// value always serializes as null and consumers can rely on key presence.
package content

import (
	"github.com/olegiv/ocms-site/internal/richtext"
)

// Kind is the CMS content type id of a record.
type Kind string

// Supported kinds.
const (
	KindPost    Kind = "post"
	KindPage    Kind = "page"
	KindFAQItem Kind = "faq_item"
)

// Entry is implemented by every normalized record.
type Entry interface {
	Kind() Kind
}

// FigureImage is an image asset ready for rendering.
type FigureImage struct {
	ImageURL    string  `json:"imageUrl"`
	Description *string `json:"description"`
	Title       *string `json:"title"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// Author is a post author.
type Author struct {
	Name     *string      `json:"name"`
	Avatar   *FigureImage `json:"avatar"`
	ShortBio *string      `json:"shortBio"`
	Position *string      `json:"position"`
	Email    *string      `json:"email"`
	Twitter  *string      `json:"twitter"`
	Facebook *string      `json:"facebook"`
	Github   *string      `json:"github"`
}

// Post is a blog post.
type Post struct {
	ID               *string            `json:"id"`
	Body             *richtext.Document `json:"body"`
	Subtitle         *string            `json:"subtitle"`
	Description      *string            `json:"description"`
	PublishedDate    string             `json:"publishedDate"`
	PublishedDateISO string             `json:"publishedDateISO"`
	Slug             string             `json:"slug"`
	Title            string             `json:"title"`
	Tags             []string           `json:"tags"`
	FeatureImage     *FigureImage       `json:"featureImage"`
	FullHeader       *bool              `json:"fullHeader"`
	Author           *Author            `json:"author"`
}

// Page is a standalone site page.
type Page struct {
	ID       *string            `json:"id"`
	Title    string             `json:"title"`
	Slug     string             `json:"slug"`
	Headline *string            `json:"headline"`
	Body     *richtext.Document `json:"body"`
}

// FAQItem is a question with a Markdown answer.
type FAQItem struct {
	ID       *int    `json:"id"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

func (Post) Kind() Kind    { return KindPost }
func (Page) Kind() Kind    { return KindPage }
func (FAQItem) Kind() Kind { return KindFAQItem }

// Entries is a normalized collection page. Total is the count reported by
// the CMS, not len(Items).
type Entries struct {
	Items []Entry `json:"entries"`
	Total int     `json:"total"`
}

// EntriesOf returns the items of type T, skipping any others.
func EntriesOf[T Entry](e Entries) []T {
	out := make([]T, 0, len(e.Items))
	for _, item := range e.Items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
