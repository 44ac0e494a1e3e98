package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/user/profile-collector/internal/collector"
	"github.com/user/profile-collector/internal/entity"
	"github.com/user/profile-collector/internal/repository"
	"github.com/user/profile-collector/pkg/metrics"
	"github.com/user/profile-collector/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrSearchRecentlyCollected = errors.New("search URL has been collected recently and force is false")
	ErrInvalidSearchURL        = errors.New("search URL must be an absolute http or https URL")
	ErrInvalidLimits           = errors.New("invalid run limits")
)

// SubmitRunRequest asks for one collection run over a search results page.
type SubmitRunRequest struct {
	SearchURL string
	Force     bool
	Limits    entity.RunLimits
}

// RunManager submits collection runs and reports on them.
type RunManager interface {
	Submit(ctx context.Context, req SubmitRunRequest) (string, error)
	GetRun(ctx context.Context, id string) (*entity.CollectionRun, error)
	ListProfiles(ctx context.Context, id string) ([]entity.ProfileRecord, error)
}

type runManagerUseCase struct {
	visitedRepo repository.VisitedRepository
	queueRepo   repository.QueueRepository
	runRepo     repository.RunRepository
	profileRepo repository.ProfileRepository
	defaults    collector.Config
	dedupWindow time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewRunManager creates a new RunManager use case. defaults are the loop
// bounds per-run limits are validated against.
func NewRunManager(
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	runRepo repository.RunRepository,
	profileRepo repository.ProfileRepository,
	defaults collector.Config,
	dedupWindow time.Duration,
	logger *zap.Logger,
) RunManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &runManagerUseCase{
		visitedRepo: visitedRepo,
		queueRepo:   queueRepo,
		runRepo:     runRepo,
		profileRepo: profileRepo,
		defaults:    defaults,
		dedupWindow: dedupWindow,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *runManagerUseCase) Submit(ctx context.Context, req SubmitRunRequest) (string, error) {
	if !utils.IsHTTPURL(req.SearchURL) {
		return "", ErrInvalidSearchURL
	}
	if err := ApplyLimits(uc.defaults, req.Limits).Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLimits, err)
	}

	if req.Force {
		if err := uc.visitedRepo.RemoveVisited(ctx, req.SearchURL); err != nil {
			uc.logger.Warn("Failed to remove visited key for forced run", zap.String("search_url", req.SearchURL), zap.Error(err))
		}
	} else {
		visited, err := uc.visitedRepo.IsVisited(ctx, req.SearchURL)
		if err != nil {
			return "", fmt.Errorf("failed to check visited search URL: %w", err)
		}
		if visited {
			return "", ErrSearchRecentlyCollected
		}
	}

	run := &entity.CollectionRun{
		ID:          uuid.NewString(),
		SearchURL:   req.SearchURL,
		Status:      entity.RunPending,
		Limits:      req.Limits,
		SubmittedAt: uc.now().UTC(),
	}
	if err := uc.runRepo.Create(ctx, run); err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	if err := uc.queueRepo.Push(ctx, run.ID); err != nil {
		if markErr := uc.runRepo.MarkFailed(ctx, run.ID, entity.RunSummary{}, "enqueue failed: "+err.Error()); markErr != nil {
			uc.logger.Error("Failed to mark unqueued run as failed", zap.String("run_id", run.ID), zap.Error(markErr))
		}
		return "", fmt.Errorf("failed to enqueue run %s: %w", run.ID, err)
	}
	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.RunsInQueue.Set(float64(size))
	}

	if uc.dedupWindow > 0 {
		if err := uc.visitedRepo.MarkVisited(ctx, req.SearchURL, uc.dedupWindow); err != nil {
			// The run is queued; a duplicate submission may slip through.
			uc.logger.Error("Failed to mark search URL as visited after queueing", zap.String("search_url", req.SearchURL), zap.Error(err))
		}
	}

	uc.logger.Info("Collection run submitted", zap.String("run_id", run.ID), zap.String("search_url", run.SearchURL), zap.Bool("force", req.Force))
	return run.ID, nil
}

// Run IDs are UUIDs; anything else cannot name a run.
func (uc *runManagerUseCase) GetRun(ctx context.Context, id string) (*entity.CollectionRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return uc.runRepo.FindByID(ctx, id)
}

func (uc *runManagerUseCase) ListProfiles(ctx context.Context, id string) ([]entity.ProfileRecord, error) {
	if _, err := uc.GetRun(ctx, id); err != nil {
		return nil, err
	}
	return uc.profileRepo.FindByRun(ctx, id)
}

// ApplyLimits overlays the per-run limits on the service defaults.
func ApplyLimits(defaults collector.Config, l entity.RunLimits) collector.Config {
	cfg := defaults
	if l.StagnationLimit != nil {
		cfg.StagnationLimit = *l.StagnationLimit
	}
	if l.MaxRecords != nil {
		cfg.MaxRecords = *l.MaxRecords
	}
	if l.MaxPasses != nil {
		cfg.MaxPasses = *l.MaxPasses
	}
	if l.SettleDelay != nil {
		cfg.SettleDelay = *l.SettleDelay
	}
	return cfg
}
