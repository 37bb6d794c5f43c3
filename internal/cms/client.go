// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cms is a read-only client for the headless CMS content delivery
// API. It resolves linked entries and assets into entry fields and caches
// responses by query.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ocms-site/internal/cache"
)

const (
	// DefaultBaseURL is the public delivery API endpoint.
	DefaultBaseURL = "https://cdn.contentful.com"

	// cacheNamespace prefixes every response cache key.
	cacheNamespace = "cms:"

	maxResponseBytes = 16 << 20
	maxRateRetries   = 2
)

// Options configures a Client.
type Options struct {
	BaseURL     string
	SpaceID     string
	Environment string
	AccessToken string
	HTTPClient  *http.Client
	// Cache stores responses for CacheTTL. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Client queries the delivery API. It is safe for concurrent use.
type Client struct {
	baseURL     string
	spaceID     string
	environment string
	token       string
	httpClient  *http.Client
	responses   *cache.TypedCache[EntryCollection]
	logger      *slog.Logger
}

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	if opts.SpaceID == "" {
		return nil, errors.New("cms: space id is required")
	}
	if opts.AccessToken == "" {
		return nil, errors.New("cms: access token is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Environment == "" {
		opts.Environment = "master"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		spaceID:     opts.SpaceID,
		environment: opts.Environment,
		token:       opts.AccessToken,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
	}
	if opts.Cache != nil {
		c.responses = cache.NewTypedCache[EntryCollection](opts.Cache, cacheNamespace, opts.CacheTTL)
	}
	return c, nil
}

// GetEntries fetches one page of entries matching q.
func (c *Client) GetEntries(ctx context.Context, q Query) (*EntryCollection, error) {
	if c.responses == nil {
		return c.fetchEntries(ctx, q)
	}
	coll, err := c.responses.GetOrSet(ctx, q.Key(), func(ctx context.Context) (EntryCollection, error) {
		fetched, err := c.fetchEntries(ctx, q)
		if err != nil {
			return EntryCollection{}, err
		}
		return *fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return &coll, nil
}

// FirstEntry returns the first entry matching q, or ErrNotFound.
func (c *Client) FirstEntry(ctx context.Context, q Query) (*Entry, error) {
	if q.Limit == 0 {
		q.Limit = 1
	}
	coll, err := c.GetEntries(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(coll.Items) == 0 {
		return nil, ErrNotFound
	}
	return &coll.Items[0], nil
}

// InvalidateCache drops every cached response.
func (c *Client) InvalidateCache(ctx context.Context) error {
	if c.responses == nil {
		return nil
	}
	return c.responses.Invalidate(ctx)
}

// Ping checks that the space is reachable with the configured token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "content_types", url.Values{"limit": {"1"}})
	return err
}

func (c *Client) fetchEntries(ctx context.Context, q Query) (*EntryCollection, error) {
	start := time.Now()
	body, err := c.get(ctx, "entries", q.Values())
	if err != nil {
		return nil, err
	}
	coll, err := decodeCollection(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("cms entries fetched",
		"content_type", q.ContentType,
		"items", len(coll.Items),
		"total", coll.Total,
		"duration", time.Since(start))
	return coll, nil
}

// get performs a GET against the environment, retrying rate limited
// requests after the advertised reset delay.
func (c *Client) get(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/%s",
		c.baseURL, url.PathEscape(c.spaceID), url.PathEscape(c.environment), resource)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cms request %s: %w", resource, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading cms response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRateRetries {
			wait := retryDelay(resp.Header)
			c.logger.Warn("cms rate limited, retrying", "resource", resource, "wait", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, newAPIError(resp.StatusCode, body)
		}
		return body, nil
	}
}

func retryDelay(h http.Header) time.Duration {
	if s, err := strconv.Atoi(h.Get("X-Contentful-RateLimit-Reset")); err == nil && s >= 0 {
		return min(time.Duration(s)*time.Second, 10*time.Second)
	}
	return time.Second
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		apiErr.ID = eb.Sys.ID
		apiErr.Message = eb.Message
		apiErr.RequestID = eb.RequestID
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body[:min(len(body), 256)]))
	}
	return apiErr
}
