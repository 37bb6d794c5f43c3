// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package preview fetches link-preview metadata for embedded links and
// attaches it to rich-text documents.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/ocms-site/internal/cache"
	"github.com/olegiv/ocms-site/internal/richtext"
	"github.com/olegiv/ocms-site/internal/sanitize"
	"github.com/olegiv/ocms-site/internal/util"
)

// Fetcher returns preview metadata for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (richtext.Meta, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (richtext.Meta, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (richtext.Meta, error) {
	return f(ctx, url)
}

// Defaults for HTTPFetcher.
const (
	DefaultOEmbedEndpoint = "https://noembed.com/embed"
	DefaultRatePerSecond  = 10
	DefaultCacheTTL       = 24 * time.Hour
	DefaultMaxBodyBytes   = 1 << 20
	DefaultUserAgent      = "ocms-site-preview/1.0"

	cacheNamespace = "preview:"
)

// ErrNoPreview is returned when neither the oEmbed provider nor the page
// itself yields any metadata.
var ErrNoPreview = errors.New("preview: no metadata found")

// Options configures an HTTPFetcher.
type Options struct {
	// OEmbedEndpoint is a noembed compatible endpoint taking ?url=.
	OEmbedEndpoint string
	// SkipOEmbed goes straight to page scraping.
	SkipOEmbed bool
	// Client defaults to util.NewSafeHTTPClient.
	Client        *http.Client
	RatePerSecond float64
	Burst         int
	// Cache stores results for CacheTTL. Nil disables caching.
	Cache        cache.Cache
	CacheTTL     time.Duration
	MaxBodyBytes int64
	UserAgent    string
	Logger       *slog.Logger
}

// HTTPFetcher asks an oEmbed provider first and falls back to scraping
// OpenGraph metadata from the page. Every text field it returns has been
// sanitized. It is safe for concurrent use.
type HTTPFetcher struct {
	endpoint     string
	skipOEmbed   bool
	client       *http.Client
	limiter      *rate.Limiter
	results      *cache.TypedCache[metaEnvelope]
	maxBodyBytes int64
	userAgent    string
	logger       *slog.Logger
}

// metaEnvelope carries a Meta through the JSON cache.
type metaEnvelope struct {
	OEmbed *richtext.OEmbed   `json:"oembed,omitempty"`
	Card   *richtext.LinkCard `json:"card,omitempty"`
}

func (e metaEnvelope) meta() richtext.Meta {
	if e.OEmbed != nil {
		return e.OEmbed
	}
	if e.Card != nil {
		return e.Card
	}
	return nil
}

func envelope(m richtext.Meta) metaEnvelope {
	switch v := m.(type) {
	case *richtext.OEmbed:
		return metaEnvelope{OEmbed: v}
	case *richtext.LinkCard:
		return metaEnvelope{Card: v}
	}
	return metaEnvelope{}
}

// NewHTTPFetcher applies defaults to opts and returns a fetcher.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.OEmbedEndpoint == "" {
		opts.OEmbedEndpoint = DefaultOEmbedEndpoint
	}
	if opts.Client == nil {
		opts.Client = util.NewSafeHTTPClient(10 * time.Second)
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = DefaultRatePerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = max(1, int(opts.RatePerSecond))
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	f := &HTTPFetcher{
		endpoint:     opts.OEmbedEndpoint,
		skipOEmbed:   opts.SkipOEmbed,
		client:       opts.Client,
		limiter:      rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		maxBodyBytes: opts.MaxBodyBytes,
		userAgent:    opts.UserAgent,
		logger:       opts.Logger,
	}
	if opts.Cache != nil {
		f.results = cache.NewTypedCache[metaEnvelope](opts.Cache, cacheNamespace, opts.CacheTTL)
	}
	return f
}

// Fetch returns an *OEmbed when the provider knows the URL, otherwise a
// *LinkCard scraped from the page.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (richtext.Meta, error) {
	u, err := util.CheckPublicURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", rawURL, err)
	}
	target := u.String()

	if f.results == nil {
		return f.fetch(ctx, target)
	}
	env, err := f.results.GetOrSet(ctx, target, func(ctx context.Context) (metaEnvelope, error) {
		m, err := f.fetch(ctx, target)
		if err != nil {
			return metaEnvelope{}, err
		}
		return envelope(m), nil
	})
	if err != nil {
		return nil, err
	}
	if m := env.meta(); m != nil {
		return m, nil
	}
	return nil, ErrNoPreview
}

func (f *HTTPFetcher) fetch(ctx context.Context, target string) (richtext.Meta, error) {
	if !f.skipOEmbed {
		o, err := f.oembed(ctx, target)
		if err == nil && o != nil {
			return o, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Debug("oembed lookup failed, scraping page", "url", target, "error", err)
		}
	}
	return f.scrape(ctx, target)
}

// oembedResponse is the provider reply; noembed reports unknown URLs in
// the error member.
type oembedResponse struct {
	richtext.OEmbed
	Error string `json:"error"`
}

// oembed returns nil without error when the provider has no embed.
func (f *HTTPFetcher) oembed(ctx context.Context, target string) (*richtext.OEmbed, error) {
	endpoint := f.endpoint + "?" + url.Values{"url": {target}}.Encode()
	body, _, err := f.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}
	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding oembed response: %w", err)
	}
	if resp.Error != "" || strings.TrimSpace(resp.HTML) == "" {
		return nil, nil
	}

	o := resp.OEmbed
	o.HTML = sanitize.Embed(o.HTML)
	if o.HTML == "" {
		return nil, nil
	}
	o.Title = sanitize.HTML(o.Title)
	o.ProviderName = sanitize.HTML(o.ProviderName)
	if o.URL == "" {
		o.URL = target
	}
	return &o, nil
}

func (f *HTTPFetcher) scrape(ctx context.Context, target string) (richtext.Meta, error) {
	body, contentType, err := f.get(ctx, target, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	if mt, _, _ := mime.ParseMediaType(contentType); mt != "" && !strings.Contains(mt, "html") {
		return &richtext.LinkCard{URL: target}, nil
	}
	card, err := parseLinkCard(body, target)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// get performs a rate limited GET and returns at most maxBodyBytes.
func (f *HTTPFetcher) get(ctx context.Context, target, accept string) ([]byte, string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching %s: unexpected status %d", target, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", target, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
