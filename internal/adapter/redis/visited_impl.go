package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/profile-collector/pkg/utils"
)

const visitedSearchPrefix = "collector:visited:"

// VisitedRepoImpl implements repository.VisitedRepository with expiring keys.
type VisitedRepoImpl struct {
	client redis.Cmdable
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client redis.Cmdable) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

// key hashes the search URL so long query strings stay out of the keyspace.
func (r *VisitedRepoImpl) key(searchURL string) string {
	return visitedSearchPrefix + utils.HashURL(searchURL)
}

// MarkVisited sets the key with the dedup window as its expiry.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, searchURL string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.key(searchURL), "1", expiry).Err()
}

func (r *VisitedRepoImpl) IsVisited(ctx context.Context, searchURL string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(searchURL)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *VisitedRepoImpl) RemoveVisited(ctx context.Context, searchURL string) error {
	return r.client.Del(ctx, r.key(searchURL)).Err()
}
