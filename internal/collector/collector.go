// Package collector runs the incremental collection loop: scan the page,
// merge new records, decide, trigger more content, wait, and scan again
// until the page stops yielding new records or a bound is reached.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/user/profile-collector/internal/entity"
	"go.uber.org/zap"
)

// Trigger asks the host page to render more results. It may return before
// the new content is present.
type Trigger interface {
	LoadMore(ctx context.Context) error
}

// TriggerFunc adapts a plain function to Trigger.
type TriggerFunc func(ctx context.Context) error

func (f TriggerFunc) LoadMore(ctx context.Context) error { return f(ctx) }

// ExtractFunc scans the current page and returns the records present on it.
type ExtractFunc func(ctx context.Context) ([]entity.ProfileRecord, error)

// PassStats describes one scan pass.
type PassStats struct {
	Pass          int
	Added         int
	Total         int
	Stagnant      bool
	TriggerFailed bool
	ScanFailed    bool
}

// Result is the outcome of one collection run.
type Result struct {
	Records         []entity.ProfileRecord
	Passes          int
	StopReason      entity.StopReason
	TriggerFailures int
	ScanFailures    int
	Elapsed         time.Duration
}

// Collector holds validated bounds and collaborators. One Collector may
// serve many runs; each call to Collect uses its own accumulator.
type Collector struct {
	cfg    Config
	logger *zap.Logger
	wait   WaitFunc
	onPass func(PassStats)
}

// Option customises a Collector.
type Option func(*Collector)

func WithLogger(l *zap.Logger) Option { return func(c *Collector) { c.logger = l } }

// WithWait replaces the settle wait, mainly for tests.
func WithWait(w WaitFunc) Option { return func(c *Collector) { c.wait = w } }

// WithPassHook registers fn to be called after every pass.
func WithPassHook(fn func(PassStats)) Option { return func(c *Collector) { c.onPass = fn } }

// New validates cfg and returns a Collector.
func New(cfg Config, opts ...Option) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Collector{
		cfg:    cfg,
		logger: zap.NewNop(),
		wait:   SleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.wait == nil {
		c.wait = SleepContext
	}
	return c, nil
}

// Collect runs one collection with cfg and returns the accumulated records.
func Collect(ctx context.Context, trigger Trigger, extract ExtractFunc, cfg Config) ([]entity.ProfileRecord, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	res, err := c.Collect(ctx, trigger, extract)
	return res.Records, err
}

// Collect loops until the run is done and returns every distinct record in
// first-seen order. Cancellation of ctx ends the run with the records
// gathered so far. The returned error is non-nil only for missing
// collaborators or ErrInvariantViolation; the Result is always usable.
func (c *Collector) Collect(ctx context.Context, trigger Trigger, extract ExtractFunc) (*Result, error) {
	if trigger == nil || extract == nil {
		return &Result{Records: []entity.ProfileRecord{}}, fmt.Errorf("%w: trigger and extract are required", ErrInvalidConfig)
	}

	start := time.Now()
	runCtx := ctx
	if c.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.MaxDuration)
		defer cancel()
	}

	acc := NewAccumulator(c.cfg.MaxRecords)
	res := &Result{}
	var (
		stagnant      int
		streakAdded   int
		triggerFailed bool
		runErr        error
	)

loop:
	for {
		// SCANNING
		if runCtx.Err() != nil {
			res.StopReason = interrupted(ctx)
			break loop
		}
		res.Passes++
		stats := PassStats{Pass: res.Passes, TriggerFailed: triggerFailed}

		records, err := extract(runCtx)
		switch {
		case err != nil && runCtx.Err() != nil:
			res.StopReason = interrupted(ctx)
			break loop
		case err != nil:
			res.ScanFailures++
			stats.ScanFailed = true
			c.logger.Warn("Scan failed, counting pass as stagnant", zap.Int("pass", res.Passes), zap.Error(err))
		default:
			added, mergeErr := acc.Merge(records)
			stats.Added = added
			if mergeErr != nil {
				c.logger.Error("Extracted record violates url invariant", zap.Int("pass", res.Passes), zap.Error(mergeErr))
				res.StopReason = entity.StopInvariant
				runErr = fmt.Errorf("pass %d: %w", res.Passes, mergeErr)
				stats.Total = acc.Len()
				c.report(stats)
				break loop
			}
		}

		stats.Total = acc.Len()
		stats.Stagnant = stats.Added == 0 || stats.ScanFailed || stats.TriggerFailed
		if stats.Stagnant {
			stagnant++
			streakAdded += stats.Added
		} else {
			stagnant = 0
			streakAdded = 0
		}
		c.report(stats)

		// Decide
		switch {
		case acc.Full():
			res.StopReason = entity.StopMaxRecords
			break loop
		case stagnant >= c.cfg.StagnationLimit && streakAdded > 0:
			// Records kept arriving; only the trigger gave out.
			res.StopReason = entity.StopTriggerExhausted
			break loop
		case stagnant >= c.cfg.StagnationLimit:
			res.StopReason = entity.StopStagnation
			break loop
		case c.cfg.MaxPasses > 0 && res.Passes >= c.cfg.MaxPasses:
			res.StopReason = entity.StopMaxPasses
			break loop
		}
		if runCtx.Err() != nil {
			res.StopReason = interrupted(ctx)
			break loop
		}

		// TRIGGERING
		triggerFailed = false
		if err := trigger.LoadMore(runCtx); err != nil {
			if runCtx.Err() != nil {
				res.StopReason = interrupted(ctx)
				break loop
			}
			triggerFailed = true
			res.TriggerFailures++
			c.logger.Warn("Trigger failed, counting pass as stagnant", zap.Int("pass", res.Passes), zap.Error(err))
		}

		// WAITING
		if err := c.wait(runCtx, c.cfg.SettleDelay); err != nil {
			if runCtx.Err() != nil {
				res.StopReason = interrupted(ctx)
				break loop
			}
			c.logger.Warn("Settle wait failed", zap.Int("pass", res.Passes), zap.Error(err))
		}
	}

	res.Records = acc.Records()
	res.Elapsed = time.Since(start)
	c.logger.Info("Collection finished",
		zap.String("stop_reason", string(res.StopReason)),
		zap.Int("passes", res.Passes),
		zap.Int("records", len(res.Records)),
		zap.Int("trigger_failures", res.TriggerFailures),
		zap.Int("scan_failures", res.ScanFailures),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, runErr
}

func (c *Collector) report(s PassStats) {
	c.logger.Debug("Pass complete",
		zap.Int("pass", s.Pass),
		zap.Int("added", s.Added),
		zap.Int("total", s.Total),
		zap.Bool("stagnant", s.Stagnant),
	)
	if c.onPass != nil {
		c.onPass(s)
	}
}

// interrupted tells caller cancellation apart from the run's own time budget.
func interrupted(parent context.Context) entity.StopReason {
	if parent.Err() != nil {
		return entity.StopCancelled
	}
	return entity.StopTimeBudget
}
