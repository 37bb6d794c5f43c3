// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DebounceConfig holds debouncer configuration.
type DebounceConfig struct {
	// Interval is the quiet period after the last event before a run starts.
	Interval time.Duration
	// MaxWait bounds how long a burst of events can postpone a run.
	MaxWait time.Duration
	// RunTimeout bounds each run.
	RunTimeout time.Duration
}

// DefaultDebounceConfig returns default debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval:   2 * time.Second,
		MaxWait:    10 * time.Second,
		RunTimeout: 30 * time.Second,
	}
}

// RunFunc refreshes the site after content changed.
type RunFunc func(ctx context.Context) error

// Debouncer coalesces bursts of CMS events into a single run. Editors
// publishing several entries in a row trigger one revalidation, not one
// per entry.
type Debouncer struct {
	run    RunFunc
	config DebounceConfig
	logger *slog.Logger

	mu        sync.Mutex
	pending   map[string]Event
	timer     *time.Timer
	firstSeen time.Time
	stopped   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDebouncer creates a new event debouncer.
func NewDebouncer(run RunFunc, config DebounceConfig, logger *slog.Logger) *Debouncer {
	def := DefaultDebounceConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.MaxWait < config.Interval {
		config.MaxWait = config.Interval
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = def.RunTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		run:     run,
		config:  config,
		logger:  logger,
		pending: make(map[string]Event),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add queues an event. The run starts once no event arrived for Interval, or
// MaxWait after the first event of the burst.
func (d *Debouncer) Add(ev Event) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[ev.Key()] = ev
	if d.timer == nil {
		d.firstSeen = now
		d.timer = time.AfterFunc(d.config.Interval, d.fire)
		d.logger.Debug("revalidation queued", "key", ev.Key(), "topic", ev.Topic)
		return
	}

	if now.Sub(d.firstSeen) >= d.config.MaxWait {
		d.dispatchLocked()
		return
	}

	d.timer.Reset(d.config.Interval)
	d.logger.Debug("revalidation postponed",
		"key", ev.Key(),
		"pending", len(d.pending),
		"wait_time", now.Sub(d.firstSeen))
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatchLocked()
}

// dispatchLocked starts a run for the pending events. Must be called with
// lock held.
func (d *Debouncer) dispatchLocked() {
	if len(d.pending) == 0 {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	count := len(d.pending)
	d.pending = make(map[string]Event)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(d.ctx, d.config.RunTimeout)
		defer cancel()

		if err := d.run(ctx); err != nil {
			d.logger.Error("webhook revalidation failed", "error", err, "events", count)
			return
		}
		d.logger.Info("webhook revalidation completed", "events", count)
	}()
}

// Flush immediately runs for all pending events.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatchLocked()
}

// Stop flushes pending events and waits for running revalidations.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.dispatchLocked()
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

// PendingCount returns the number of distinct pending entries.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
