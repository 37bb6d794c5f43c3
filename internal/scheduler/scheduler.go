// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic content revalidation.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds a single revalidation run.
const DefaultRunTimeout = 30 * time.Second

// parser accepts standard five-field specs and descriptors such as
// "@every 1m" or "@hourly".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Target is the content the scheduler keeps fresh. *service.ContentService
// implements it.
type Target interface {
	Revalidate(ctx context.Context) error
	Warm(ctx context.Context) error
}

// Scheduler drops cached CMS responses on a schedule and re-warms the
// listings most pages depend on.
type Scheduler struct {
	cron     *cron.Cron
	target   Target
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

// ValidateSchedule reports whether spec is a valid cron schedule.
func ValidateSchedule(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// New creates a new scheduler instance.
func New(target Target, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		target:   target,
		schedule: schedule,
		timeout:  DefaultRunTimeout,
		logger:   logger,
	}
}

// Start registers the revalidation job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("revalidation failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling revalidation %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce revalidates and then warms the content. A failed revalidation
// skips warming, since warming would only re-read stale entries.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	if err := s.target.Revalidate(ctx); err != nil {
		return err
	}
	if err := s.target.Warm(ctx); err != nil {
		return fmt.Errorf("warming content: %w", err)
	}
	s.logger.Debug("content revalidated", "duration", time.Since(start))
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
