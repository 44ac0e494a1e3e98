package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/user/profile-collector/internal/repository"
)

const runQueueKey = "collector:runs:queue"

// QueueRepoImpl implements repository.QueueRepository on a Redis list.
type QueueRepoImpl struct {
	client redis.Cmdable
	key    string
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client redis.Cmdable) *QueueRepoImpl {
	return &QueueRepoImpl{client: client, key: runQueueKey}
}

// Push adds a run ID to the left side of the list.
func (r *QueueRepoImpl) Push(ctx context.Context, runID string) error {
	return r.client.LPush(ctx, r.key, runID).Err()
}

// Pop removes a run ID from the right side of the list, so the oldest
// submission is served first.
func (r *QueueRepoImpl) Pop(ctx context.Context) (string, error) {
	id, err := r.client.RPop(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrQueueEmpty
	}
	return id, err
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.key).Result()
}
