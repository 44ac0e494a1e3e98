package repository

import (
	"context"

	"github.com/user/profile-collector/internal/entity"
)

// ProfileRepository stores the records collected by a run.
type ProfileRepository interface {
	// SaveBatch stores records for runID, preserving their order.
	SaveBatch(ctx context.Context, runID string, records []entity.ProfileRecord) error
	// FindByRun returns the records of runID in first-seen order.
	FindByRun(ctx context.Context, runID string) ([]entity.ProfileRecord, error)
}
