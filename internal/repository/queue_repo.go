package repository

import "context"

// QueueRepository is a FIFO queue of run IDs waiting for a worker.
type QueueRepository interface {
	// Push adds a run ID to the end of the queue.
	Push(ctx context.Context, runID string) error
	// Pop removes and returns the oldest run ID, or ErrQueueEmpty.
	Pop(ctx context.Context) (string, error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
