// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// placeholderTokens are example values from .env templates that must never
// reach the CMS.
var placeholderTokens = []string{
	"your-access-token",
	"REPLACE_WITH_YOUR_ACCESS_TOKEN",
	"changeme",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// CMS delivery API
	CMSSpaceID     string        `env:"SITE_CMS_SPACE_ID,required"`
	CMSAccessToken string        `env:"SITE_CMS_ACCESS_TOKEN,required"`
	CMSEnvironment string        `env:"SITE_CMS_ENVIRONMENT" envDefault:"master"`
	CMSBaseURL     string        `env:"SITE_CMS_BASE_URL" envDefault:"https://cdn.contentful.com"`
	CMSTimeout     time.Duration `env:"SITE_CMS_TIMEOUT" envDefault:"10s"`

	ServerHost string `env:"SITE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SITE_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"SITE_ENV" envDefault:"development"`
	LogLevel   string `env:"SITE_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"SITE_LOG_FORMAT" envDefault:"text"`

	SiteName string `env:"SITE_NAME" envDefault:"Blog"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration
	RedisURL     string `env:"SITE_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"SITE_CACHE_PREFIX" envDefault:"site:"`   // Redis key prefix
	CacheTTL     int    `env:"SITE_CACHE_TTL" envDefault:"60"`         // CMS response TTL in seconds
	CacheMaxSize int    `env:"SITE_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Link previews
	PreviewEndpoint    string        `env:"SITE_PREVIEW_ENDPOINT" envDefault:"https://noembed.com/embed"`
	PreviewTimeout     time.Duration `env:"SITE_PREVIEW_TIMEOUT" envDefault:"5s"`
	PreviewConcurrency int           `env:"SITE_PREVIEW_CONCURRENCY" envDefault:"8"`
	PreviewRate        float64       `env:"SITE_PREVIEW_RATE" envDefault:"10"`        // Requests per second
	PreviewCacheTTL    int           `env:"SITE_PREVIEW_CACHE_TTL" envDefault:"86400"` // Seconds

	RevalidateSchedule string `env:"SITE_REVALIDATE_SCHEDULE" envDefault:"@every 1m"`
	WhitepaperURL      string `env:"SITE_WHITEPAPER_URL" envDefault:"https://arxiv.org/pdf/2002.04609.pdf"`

	// CMS publish webhook. The revalidation endpoint is disabled without a secret.
	WebhookSecret   string        `env:"SITE_WEBHOOK_SECRET"`
	WebhookDebounce time.Duration `env:"SITE_WEBHOOK_DEBOUNCE" envDefault:"2s"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// WebhookEnabled returns true if the CMS publish webhook is configured.
func (c Config) WebhookEnabled() bool {
	return c.WebhookSecret != ""
}

// CacheTTLDuration returns the CMS response TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// PreviewCacheTTLDuration returns the link preview TTL.
func (c Config) PreviewCacheTTLDuration() time.Duration {
	return time.Duration(c.PreviewCacheTTL) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for _, p := range placeholderTokens {
		if strings.EqualFold(cfg.CMSAccessToken, p) {
			return nil, fmt.Errorf("SITE_CMS_ACCESS_TOKEN is a placeholder value; " +
				"use a delivery token from the CMS space settings")
		}
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SITE_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.CacheTTL < 0 || cfg.PreviewCacheTTL < 0 {
		return nil, fmt.Errorf("cache TTLs must not be negative")
	}
	if cfg.PreviewConcurrency <= 0 {
		return nil, fmt.Errorf("SITE_PREVIEW_CONCURRENCY must be positive, got %d", cfg.PreviewConcurrency)
	}
	if cfg.WebhookEnabled() && len(cfg.WebhookSecret) < 16 {
		return nil, fmt.Errorf("SITE_WEBHOOK_SECRET must be at least 16 characters")
	}
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")

	return cfg, nil
}
