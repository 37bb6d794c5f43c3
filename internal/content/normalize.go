// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocms-site/internal/cms"
	"github.com/olegiv/ocms-site/internal/util"
)

// DisplayDateLayout is the human readable publish date format.
const DisplayDateLayout = "January 02, 2006"

// dateLayouts are the ISO-8601 forms the CMS emits for date fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date. Values without an offset are UTC.
func ParseDate(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, &ParseError{Field: "date", Value: s, Err: firstErr}
}

// NormalizePost converts a post entry.
func NormalizePost(e cms.Entry) (Post, error) {
	var raw RawPost
	if err := decodeRaw(e, &raw); err != nil {
		return Post{}, fmt.Errorf("post %s: %w", e.Sys.ID, err)
	}

	published, err := ParseDate(raw.Date)
	if err != nil {
		return Post{}, fmt.Errorf("post %s: %w", e.Sys.ID, err)
	}

	post := Post{
		ID:               optionalID(e.Sys.ID),
		Body:             raw.Body,
		Subtitle:         raw.Subtitle,
		Description:      raw.Description,
		PublishedDate:    published.Format(DisplayDateLayout),
		PublishedDateISO: published.Format(time.RFC3339),
		Slug:             raw.Slug,
		Title:            raw.Title,
		Tags:             raw.Tags,
		FullHeader:       raw.FullHeader,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	if raw.FeatureImage.HasFile() {
		img, err := NormalizeImage(*raw.FeatureImage)
		if err != nil {
			return Post{}, fmt.Errorf("post %s feature image: %w", e.Sys.ID, err)
		}
		post.FeatureImage = &img
	}
	if raw.Author.Resolved() {
		author, err := NormalizeAuthor(*raw.Author)
		if err != nil {
			return Post{}, fmt.Errorf("post %s author: %w", e.Sys.ID, err)
		}
		post.Author = &author
	}
	return post, nil
}

// NormalizeImage converts an asset into a FigureImage. Protocol relative
// URLs are rewritten to https.
func NormalizeImage(raw RawAsset) (FigureImage, error) {
	if !raw.HasFile() {
		return FigureImage{}, &MissingAssetError{AssetID: raw.Sys.ID}
	}
	file := raw.Fields.File
	img := FigureImage{
		ImageURL:    util.EnsureHTTPS(file.URL),
		Description: raw.Fields.Description,
		Title:       raw.Fields.Title,
	}
	if file.Details.Image != nil {
		img.Width = file.Details.Image.Width
		img.Height = file.Details.Image.Height
	}
	return img, nil
}

// NormalizeAuthor converts an author entry. The avatar is nil when the
// linked asset has no file.
func NormalizeAuthor(raw RawAuthor) (Author, error) {
	f := raw.Fields
	author := Author{
		Name:     f.Name,
		ShortBio: f.ShortBio,
		Position: f.Position,
		Email:    f.Email,
		Twitter:  f.Twitter,
		Facebook: f.Facebook,
		Github:   f.Github,
	}
	if f.Avatar.HasFile() {
		avatar, err := NormalizeImage(*f.Avatar)
		if err != nil {
			return Author{}, err
		}
		author.Avatar = &avatar
	}
	return author, nil
}

// NormalizeFAQItem converts an FAQ entry.
func NormalizeFAQItem(e cms.Entry) (FAQItem, error) {
	var raw RawFAQItem
	if err := decodeRaw(e, &raw); err != nil {
		return FAQItem{}, fmt.Errorf("faq item %s: %w", e.Sys.ID, err)
	}
	return FAQItem{ID: raw.ID, Question: raw.Question, Answer: raw.Answer}, nil
}

// NormalizePage converts a page entry.
func NormalizePage(e cms.Entry) (Page, error) {
	var raw RawPage
	if err := decodeRaw(e, &raw); err != nil {
		return Page{}, fmt.Errorf("page %s: %w", e.Sys.ID, err)
	}
	return Page{
		ID:       optionalID(e.Sys.ID),
		Title:    raw.Title,
		Slug:     raw.Slug,
		Headline: raw.Headline,
		Body:     raw.Body,
	}, nil
}

// NormalizeEntries maps a collection page through the normalizer for kind.
// Entries that fail to normalize are left out and their errors joined; the
// rest are returned. An unknown kind yields no items. Total is always the
// CMS reported total.
func NormalizeEntries(coll *cms.EntryCollection, kind Kind) (Entries, error) {
	out := Entries{Items: []Entry{}}
	if coll == nil {
		return out, nil
	}
	out.Total = coll.Total

	var normalize func(cms.Entry) (Entry, error)
	switch kind {
	case KindPost:
		normalize = func(e cms.Entry) (Entry, error) { return NormalizePost(e) }
	case KindPage:
		normalize = func(e cms.Entry) (Entry, error) { return NormalizePage(e) }
	case KindFAQItem:
		normalize = func(e cms.Entry) (Entry, error) { return NormalizeFAQItem(e) }
	default:
		return out, nil
	}

	var errs []error
	for _, e := range coll.Items {
		entry, err := normalize(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Items = append(out.Items, entry)
	}
	return out, errors.Join(errs...)
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
