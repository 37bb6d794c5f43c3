// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command site serves the blog, pages and FAQ rendered from the CMS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-site/internal/cache"
	"github.com/olegiv/ocms-site/internal/cms"
	"github.com/olegiv/ocms-site/internal/config"
	"github.com/olegiv/ocms-site/internal/handler"
	"github.com/olegiv/ocms-site/internal/logging"
	"github.com/olegiv/ocms-site/internal/middleware"
	"github.com/olegiv/ocms-site/internal/preview"
	"github.com/olegiv/ocms-site/internal/render"
	"github.com/olegiv/ocms-site/internal/scheduler"
	"github.com/olegiv/ocms-site/internal/seo"
	"github.com/olegiv/ocms-site/internal/service"
	"github.com/olegiv/ocms-site/internal/util"
	"github.com/olegiv/ocms-site/internal/version"
	"github.com/olegiv/ocms-site/internal/webhook"
	"github.com/olegiv/ocms-site/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// API rate limit per client IP.
const (
	apiRatePerSecond = 5
	apiRateBurst     = 20
)

// seoMaxAge is the browser cache lifetime of sitemap.xml and robots.txt.
const seoMaxAge = 3600

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "site - CMS backed blog and pages\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_CMS_SPACE_ID         CMS space id (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_CMS_ACCESS_TOKEN     CMS delivery token (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_REDIS_URL            Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_REVALIDATE_SCHEDULE  Cache revalidation schedule (default: @every 1m)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("site %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)
	slog.Info("starting site", "version", versionInfo.String(), "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := cache.New(ctx, cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTLDuration(),
		MaxEntries:       cfg.CacheMaxSize,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer func() { _ = store.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("cache backend configured", "backend", "redis", "prefix", cfg.CachePrefix)
	}

	cmsClient, err := cms.NewClient(cms.Options{
		BaseURL:     cfg.CMSBaseURL,
		SpaceID:     cfg.CMSSpaceID,
		Environment: cfg.CMSEnvironment,
		AccessToken: cfg.CMSAccessToken,
		HTTPClient:  &http.Client{Timeout: cfg.CMSTimeout},
		Cache:       store,
		CacheTTL:    cfg.CacheTTLDuration(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating cms client: %w", err)
	}

	fetcher := preview.NewHTTPFetcher(preview.Options{
		OEmbedEndpoint: cfg.PreviewEndpoint,
		Client:         util.NewSafeHTTPClient(cfg.PreviewTimeout),
		RatePerSecond:  cfg.PreviewRate,
		Cache:          store,
		CacheTTL:       cfg.PreviewCacheTTLDuration(),
		Logger:         logger,
	})
	enricher := preview.NewEnricher(fetcher, preview.EnricherOptions{
		Timeout:     cfg.PreviewTimeout,
		Concurrency: cfg.PreviewConcurrency,
		Logger:      logger,
	})

	contentService := service.NewContentService(cmsClient, enricher, logger)

	sched := scheduler.New(contentService, cfg.RevalidateSchedule, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Warm in the background so a slow CMS does not delay startup.
	go func() {
		if err := contentService.Warm(ctx); err != nil {
			slog.Warn("initial content warm-up failed", "error", err)
		}
	}()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		SiteName:    cfg.SiteName,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	siteHandler := handler.NewSiteHandler(contentService, renderer, handler.SiteConfig{
		SEO: seo.SiteConfig{
			SiteName: cfg.SiteName,
			SiteURL:  cfg.SiteURL,
		},
		WhitepaperURL: cfg.WhitepaperURL,
	}, logger)
	apiHandler := handler.NewAPIHandler(contentService, logger)
	seoHandler := handler.NewSEOHandler(contentService, cfg.SiteURL, cfg.IsDevelopment(), logger)
	healthHandler := handler.NewHealthHandler(cmsClient, store, versionInfo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.StaticCache(seoMaxAge))
		seoHandler.Register(r)
	})

	apiLimiter := middleware.NewClientRateLimiter(apiRatePerSecond, apiRateBurst)
	r.Group(func(r chi.Router) {
		r.Use(apiLimiter.Middleware())
		apiHandler.Register(r)
	})

	if cfg.WebhookEnabled() {
		debounce := webhook.DefaultDebounceConfig()
		debounce.Interval = cfg.WebhookDebounce
		debouncer := webhook.NewDebouncer(sched.RunOnce, debounce, logger)
		defer debouncer.Stop()

		handler.NewWebhookHandler(cfg.WebhookSecret, debouncer, logger).Register(r)
		slog.Info("cms webhook enabled", "route", handler.RouteAPIRevalidate)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.PageCache(int(cfg.CacheTTLDuration().Seconds())))
		siteHandler.Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
