package repository

import (
	"context"

	"github.com/user/profile-collector/internal/entity"
)

// RunRepository persists collection runs and their lifecycle.
type RunRepository interface {
	// Create stores a new pending run.
	Create(ctx context.Context, run *entity.CollectionRun) error
	// FindByID returns ErrNotFound when no run has that id.
	FindByID(ctx context.Context, id string) (*entity.CollectionRun, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, summary entity.RunSummary) error
	MarkFailed(ctx context.Context, id string, summary entity.RunSummary, reason string) error
}
