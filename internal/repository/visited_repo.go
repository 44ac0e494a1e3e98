package repository

import (
	"context"
	"time"
)

// VisitedRepository remembers recently collected search URLs.
type VisitedRepository interface {
	// MarkVisited marks a search URL as collected for the given window.
	MarkVisited(ctx context.Context, searchURL string, expiry time.Duration) error
	// IsVisited reports whether the URL was collected within its window.
	IsVisited(ctx context.Context, searchURL string) (bool, error)
	// RemoveVisited forgets the URL, used for forced re-collection.
	RemoveVisited(ctx context.Context, searchURL string) error
}
