// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package preview

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ocms-site/internal/richtext"
)

// Enricher defaults.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultConcurrency = 8
)

// EnricherOptions configures an Enricher.
type EnricherOptions struct {
	// Timeout bounds each individual fetch.
	Timeout time.Duration
	// Concurrency caps the number of fetches in flight.
	Concurrency int
	Logger      *slog.Logger
}

// Enricher attaches preview metadata to every embedded link of a document.
type Enricher struct {
	fetcher     Fetcher
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

// NewEnricher returns an Enricher that fetches through f.
func NewEnricher(f Fetcher, opts EnricherOptions) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Enricher{
		fetcher:     f,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
}

// Enrich returns a copy of doc in which every embedded link carries a Meta.
// doc itself is not modified. Fetches run concurrently and Enrich returns
// once all of them have settled. A fetch that fails or times out leaves a
// LinkCard holding only the URL. The error is non-nil only when ctx ends
// before enrichment completes; the returned document is still usable.
func (e *Enricher) Enrich(ctx context.Context, doc *richtext.Document) (*richtext.Document, error) {
	out := doc.Clone()
	links := richtext.EmbeddedLinks(out)
	if len(links) == 0 {
		return out, nil
	}

	// A plain Group: one failed fetch must not cancel the others.
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, link := range links {
		g.Go(func() error {
			link.Meta = e.fetch(ctx, link.URL)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return out, err
	}
	e.logger.Debug("document enriched", "links", len(links))
	return out, nil
}

func (e *Enricher) fetch(ctx context.Context, url string) richtext.Meta {
	fallback := &richtext.LinkCard{URL: url}
	if url == "" || ctx.Err() != nil {
		return fallback
	}

	fctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	meta, err := e.fetcher.Fetch(fctx, url)
	if err != nil {
		e.logger.Warn("link preview fetch failed", "url", url, "error", err)
		return fallback
	}
	if meta == nil {
		return fallback
	}
	return meta
}
