// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a query that must match an entry matches none.
var ErrNotFound = errors.New("cms: entry not found")

// Sys is the system metadata block carried by every CMS object.
type Sys struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	LinkType    string    `json:"linkType,omitempty"`
	ContentType *Link     `json:"contentType,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Link references another object by id.
type Link struct {
	Sys Sys `json:"sys"`
}

// Entry is a CMS entry whose links have been resolved into the fields.
type Entry struct {
	Sys    Sys             `json:"sys"`
	Fields json.RawMessage `json:"fields"`
}

// ContentTypeID returns the id of the entry's content type.
func (e Entry) ContentTypeID() string {
	if e.Sys.ContentType == nil {
		return ""
	}
	return e.Sys.ContentType.Sys.ID
}

// DecodeFields unmarshals the entry fields into v.
func (e Entry) DecodeFields(v any) error {
	if len(e.Fields) == 0 {
		return fmt.Errorf("entry %s has no fields", e.Sys.ID)
	}
	if err := json.Unmarshal(e.Fields, v); err != nil {
		return fmt.Errorf("decoding fields of entry %s: %w", e.Sys.ID, err)
	}
	return nil
}

// EntryCollection is one page of a collection query.
type EntryCollection struct {
	Items []Entry `json:"items"`
	Total int     `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
}

// Query describes an entry collection request.
type Query struct {
	ContentType string
	// Order is a comma separated list such as "-fields.date".
	Order string
	Limit int
	Skip  int
	// Include is the link resolution depth, 0 uses the API default.
	Include int
	// Fields are equality filters: "slug" -> fields.slug=value.
	Fields map[string]string
	// FieldsIn are array membership filters: "tags" -> fields.tags[in]=a,b.
	FieldsIn map[string][]string
}

// Values encodes the query as delivery API parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.ContentType != "" {
		v.Set("content_type", q.ContentType)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Include > 0 {
		v.Set("include", strconv.Itoa(q.Include))
	}
	for field, value := range q.Fields {
		v.Set("fields."+field, value)
	}
	for field, values := range q.FieldsIn {
		v.Set("fields."+field+"[in]", strings.Join(values, ","))
	}
	return v
}

// Key is a stable cache key for the query.
func (q Query) Key() string {
	// Encode sorts by key.
	return q.Values().Encode()
}

// APIError is an error response from the delivery API.
type APIError struct {
	StatusCode int
	ID         string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected response"
	}
	if e.ID != "" {
		return fmt.Sprintf("cms: %s (%d %s)", msg, e.StatusCode, e.ID)
	}
	return fmt.Sprintf("cms: %s (%d)", msg, e.StatusCode)
}

// errorBody is the delivery API error envelope.
type errorBody struct {
	Sys       Sys    `json:"sys"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}
