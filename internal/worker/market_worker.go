// Package worker runs the hub's background jobs.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule refreshes market statistics every five minutes
const DefaultSchedule = "@every 5m"

// MarketRefresher is the part of the market service the worker drives
type MarketRefresher interface {
	Refresh(ctx context.Context) models.MarketStats
}

// MarketWorkerConfig holds configuration for a market worker
type MarketWorkerConfig struct {
	Market     MarketRefresher
	Schedule   string
	Timeout    time.Duration
	RunOnStart bool
	Logger     *logging.Logger
}

// WorkerStats reports what the worker has done so far
type WorkerStats struct {
	Running  bool      `json:"running"`
	Schedule string    `json:"schedule"`
	Runs     int64     `json:"runs"`
	LiveRuns int64     `json:"liveRuns"`
	LastRun  time.Time `json:"lastRun"`
	LastLive bool      `json:"lastLive"`
	NextRun  time.Time `json:"nextRun,omitempty"`
}

// MarketWorker refreshes the market statistics cache on a cron schedule.
// Background refreshes do not award points.
type MarketWorker struct {
	market   MarketRefresher
	schedule string
	timeout  time.Duration
	runFirst bool
	logger   *logging.Logger

	mu      sync.RWMutex
	cron    *cron.Cron
	entry   cron.EntryID
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	stats   WorkerStats
}

// NewMarketWorker creates a market worker
func NewMarketWorker(cfg *MarketWorkerConfig) (*MarketWorker, error) {
	if cfg.Market == nil {
		return nil, fmt.Errorf("market refresher cannot be nil")
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid market refresh schedule %q: %w", schedule, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &MarketWorker{
		market:   cfg.Market,
		schedule: schedule,
		timeout:  timeout,
		runFirst: cfg.RunOnStart,
		logger:   logger.WithComponent("market_worker"),
		stats:    WorkerStats{Schedule: schedule},
	}, nil
}

// Start schedules the refresh job. ctx bounds every run.
func (w *MarketWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("market worker is already running")
	}

	cronLogger := cronLogAdapter{logger: w.logger}
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))
	entry, err := c.AddFunc(w.schedule, w.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule market refresh: %w", err)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.cron = c
	w.entry = entry
	w.running = true
	w.stats.Running = true
	c.Start()

	w.logger.WithField("schedule", w.schedule).Info("Market worker started")

	if w.runFirst {
		go w.runOnce()
	}
	return nil
}

// Stop unschedules the job and waits for a running refresh to finish
func (w *MarketWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("market worker is not running")
	}
	c := w.cron
	cancel := w.cancel
	w.running = false
	w.stats.Running = false
	w.mu.Unlock()

	done := c.Stop()
	select {
	case <-done.Done():
		cancel()
		w.logger.Info("Market worker stopped gracefully")
		return nil
	case <-ctx.Done():
		cancel()
		w.logger.Warn("Market worker stop timed out")
		return ctx.Err()
	}
}

// RunNow performs one refresh immediately
func (w *MarketWorker) RunNow(ctx context.Context) models.MarketStats {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.refresh(runCtx)
}

func (w *MarketWorker) runOnce() {
	w.mu.RLock()
	parent := w.ctx
	w.mu.RUnlock()
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()
	w.refresh(ctx)
}

func (w *MarketWorker) refresh(ctx context.Context) models.MarketStats {
	start := time.Now()
	stats := w.market.Refresh(ctx)

	w.mu.Lock()
	w.stats.Runs++
	if stats.Live {
		w.stats.LiveRuns++
	}
	w.stats.LastRun = start
	w.stats.LastLive = stats.Live
	w.mu.Unlock()

	w.logger.WithFields(map[string]interface{}{
		"live":     stats.Live,
		"price":    stats.Price,
		"duration": time.Since(start).String(),
	}).Debug("Market stats refreshed")
	return stats
}

// Stats returns a snapshot of the worker counters
func (w *MarketWorker) Stats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	stats := w.stats
	if w.running && w.cron != nil {
		stats.NextRun = w.cron.Entry(w.entry).Next
	}
	return stats
}

// IsRunning reports whether the job is scheduled
func (w *MarketWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// cronLogAdapter routes cron's internal logging to the hub logger
type cronLogAdapter struct {
	logger *logging.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.WithFields(pairs(keysAndValues)).Debug(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.WithFields(pairs(keysAndValues)).WithError(err).Error(msg)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
