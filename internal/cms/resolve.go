// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxLinkDepth bounds link resolution. Entries that link back to each
// other are expanded until the bound and then left as links.
const MaxLinkDepth = 10

// collectionResponse is the raw delivery API page.
type collectionResponse struct {
	Items    []map[string]any `json:"items"`
	Includes struct {
		Entry []map[string]any `json:"Entry"`
		Asset []map[string]any `json:"Asset"`
	} `json:"includes"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// resolver replaces link objects with the objects they reference.
type resolver struct {
	index map[string]map[string]any
}

func newResolver(resp *collectionResponse) *resolver {
	r := &resolver{index: make(map[string]map[string]any)}
	add := func(objs []map[string]any) {
		for _, obj := range objs {
			sys, _ := obj["sys"].(map[string]any)
			typ, _ := sys["type"].(string)
			id, _ := sys["id"].(string)
			if typ != "" && id != "" {
				r.index[typ+":"+id] = obj
			}
		}
	}
	add(resp.Includes.Entry)
	add(resp.Includes.Asset)
	add(resp.Items)
	return r
}

// resolve returns a copy of v with links replaced. The input is not
// modified, so shared include objects stay pristine between items.
func (r *resolver) resolve(v any, depth int) any {
	switch t := v.(type) {
	case map[string]any:
		if target, ok := r.lookup(t); ok {
			if depth >= MaxLinkDepth {
				return t
			}
			return r.resolve(target, depth+1)
		}
		out := make(map[string]any, len(t))
		for k, child := range t {
			if k == "sys" {
				out[k] = child
				continue
			}
			out[k] = r.resolve(child, depth)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = r.resolve(child, depth)
		}
		return out
	default:
		return v
	}
}

// lookup returns the referenced object when m is a resolvable link.
func (r *resolver) lookup(m map[string]any) (map[string]any, bool) {
	sys, ok := m["sys"].(map[string]any)
	if !ok || sys["type"] != "Link" {
		return nil, false
	}
	linkType, _ := sys["linkType"].(string)
	id, _ := sys["id"].(string)
	target, ok := r.index[linkType+":"+id]
	return target, ok
}

// decodeCollection parses a delivery API page and resolves every link in
// the item fields.
func decodeCollection(body []byte) (*EntryCollection, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var resp collectionResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding entry collection: %w", err)
	}

	r := newResolver(&resp)
	coll := &EntryCollection{
		Items: make([]Entry, 0, len(resp.Items)),
		Total: resp.Total,
		Skip:  resp.Skip,
		Limit: resp.Limit,
	}
	for i, item := range resp.Items {
		var entry Entry
		sysJSON, err := json.Marshal(item["sys"])
		if err != nil {
			return nil, fmt.Errorf("encoding sys of item %d: %w", i, err)
		}
		if err := json.Unmarshal(sysJSON, &entry.Sys); err != nil {
			return nil, fmt.Errorf("decoding sys of item %d: %w", i, err)
		}
		fields, err := json.Marshal(r.resolve(item["fields"], 0))
		if err != nil {
			return nil, fmt.Errorf("encoding fields of item %d: %w", i, err)
		}
		entry.Fields = fields
		coll.Items = append(coll.Items, entry)
	}
	return coll, nil
}
