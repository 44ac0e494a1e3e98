package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/profile-collector/internal/collector"
	"github.com/user/profile-collector/internal/entity"
	"github.com/user/profile-collector/internal/repository"
	"github.com/user/profile-collector/pkg/metrics"
	"go.uber.org/zap"
)

// finalizeTimeout bounds the writes that record a run's outcome, which run
// even after the worker's context is cancelled.
const finalizeTimeout = 30 * time.Second

// RecordExtractor turns a rendered results page into profile records.
type RecordExtractor interface {
	Extract(doc *goquery.Document) []entity.ProfileRecord
}

// Collection defines the core collection process.
type Collection interface {
	// ProcessRunFromQueue runs one queued collection to completion. It
	// returns repository.ErrQueueEmpty when nothing is waiting.
	ProcessRunFromQueue(ctx context.Context) error
}

type collectionUseCase struct {
	queueRepo   repository.QueueRepository
	runRepo     repository.RunRepository
	profileRepo repository.ProfileRepository
	browser     repository.BrowserRepository
	extractor   RecordExtractor
	defaults    collector.Config
	logger      *zap.Logger
	opts        []collector.Option
}

// NewCollectionUseCase creates a new instance of the collection use case.
// defaults.MaxDuration is the per-run time budget. opts are passed to every
// Collector it builds.
func NewCollectionUseCase(
	queueRepo repository.QueueRepository,
	runRepo repository.RunRepository,
	profileRepo repository.ProfileRepository,
	browser repository.BrowserRepository,
	extractor RecordExtractor,
	defaults collector.Config,
	logger *zap.Logger,
	opts ...collector.Option,
) Collection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &collectionUseCase{
		queueRepo:   queueRepo,
		runRepo:     runRepo,
		profileRepo: profileRepo,
		browser:     browser,
		extractor:   extractor,
		defaults:    defaults,
		logger:      logger,
		opts:        opts,
	}
}

func (uc *collectionUseCase) ProcessRunFromQueue(ctx context.Context) error {
	runID, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return err
		}
		return fmt.Errorf("failed to pop run from queue: %w", err)
	}
	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.RunsInQueue.Set(float64(size))
	}

	run, err := uc.runRepo.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			uc.logger.Warn("Dropping queued run with no record", zap.String("run_id", runID))
			return nil
		}
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	log := uc.logger.With(zap.String("run_id", run.ID), zap.String("search_url", run.SearchURL))

	if err := uc.runRepo.MarkRunning(ctx, run.ID); err != nil {
		return fmt.Errorf("failed to mark run %s running: %w", run.ID, err)
	}
	log.Info("Processing collection run")

	start := time.Now()
	summary, runErr := uc.collect(ctx, run, log)
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	return uc.finalize(ctx, run.ID, summary, runErr, log)
}

// collect runs the loop over a fresh page session and persists whatever was
// gathered, including partial results of an interrupted run.
func (uc *collectionUseCase) collect(ctx context.Context, run *entity.CollectionRun, log *zap.Logger) (entity.RunSummary, error) {
	cfg := ApplyLimits(uc.defaults, run.Limits)
	opts := append([]collector.Option{
		collector.WithLogger(log),
		collector.WithPassHook(observePass),
	}, uc.opts...)
	c, err := collector.New(cfg, opts...)
	if err != nil {
		return entity.RunSummary{}, err
	}

	session, err := uc.browser.Open(ctx, run.SearchURL)
	if err != nil {
		return entity.RunSummary{}, fmt.Errorf("failed to open search page: %w", err)
	}
	defer session.Close()

	extract := func(ctx context.Context) ([]entity.ProfileRecord, error) {
		doc, err := session.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return uc.extractor.Extract(doc), nil
	}

	res, loopErr := c.Collect(ctx, session, extract)
	summary := entity.RunSummary{
		StopReason:      res.StopReason,
		Passes:          res.Passes,
		RecordCount:     len(res.Records),
		TriggerFailures: res.TriggerFailures,
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	if err := uc.profileRepo.SaveBatch(saveCtx, run.ID, res.Records); err != nil {
		return summary, fmt.Errorf("failed to save %d profiles: %w", len(res.Records), err)
	}
	metrics.ProfilesCollectedTotal.Add(float64(len(res.Records)))
	return summary, loopErr
}

func (uc *collectionUseCase) finalize(ctx context.Context, runID string, s entity.RunSummary, runErr error, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if runErr != nil {
		metrics.RunsTotal.WithLabelValues(string(entity.RunFailed), string(s.StopReason)).Inc()
		log.Error("Collection run failed", zap.Error(runErr), zap.Int("records", s.RecordCount))
		if err := uc.runRepo.MarkFailed(ctx, runID, s, runErr.Error()); err != nil {
			return fmt.Errorf("failed to mark run %s failed: %w", runID, err)
		}
		return nil
	}

	metrics.RunsTotal.WithLabelValues(string(entity.RunCompleted), string(s.StopReason)).Inc()
	log.Info("Collection run completed",
		zap.String("stop_reason", string(s.StopReason)),
		zap.Int("passes", s.Passes),
		zap.Int("records", s.RecordCount),
	)
	if err := uc.runRepo.MarkCompleted(ctx, runID, s); err != nil {
		return fmt.Errorf("failed to mark run %s completed: %w", runID, err)
	}
	return nil
}

func observePass(s collector.PassStats) {
	if s.TriggerFailed {
		metrics.TriggerFailuresTotal.Inc()
	}
	outcome := "productive"
	switch {
	case s.ScanFailed:
		outcome = "scan_failed"
	case s.TriggerFailed:
		outcome = "trigger_failed"
	case s.Stagnant:
		outcome = "stagnant"
	}
	metrics.ScanPassesTotal.WithLabelValues(outcome).Inc()
}
