package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/profile-collector/internal/repository"
)

// newTestClient connects to the Redis named by TEST_REDIS_ADDR or skips.
func newTestClient(t *testing.T) *QueueRepoImpl {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	q := NewQueueRepo(client)
	q.key = "collector:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), q.key) })
	return q
}

func TestQueueRepo_FIFO(t *testing.T) {
	q := newTestClient(t)
	ctx := context.Background()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, repository.ErrQueueEmpty)

	require.NoError(t, q.Push(ctx, "run-1"))
	require.NoError(t, q.Push(ctx, "run-2"))
	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, size)

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", first)
	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", second)
}

func TestVisitedRepo_Window(t *testing.T) {
	q := newTestClient(t)
	v := NewVisitedRepo(q.client)
	ctx := context.Background()
	searchURL := "https://example.com/search/results/people/?q=" + uuid.NewString()

	visited, err := v.IsVisited(ctx, searchURL)
	require.NoError(t, err)
	assert.False(t, visited)

	require.NoError(t, v.MarkVisited(ctx, searchURL, time.Minute))
	visited, err = v.IsVisited(ctx, searchURL)
	require.NoError(t, err)
	assert.True(t, visited)

	require.NoError(t, v.RemoveVisited(ctx, searchURL))
	visited, err = v.IsVisited(ctx, searchURL)
	require.NoError(t, err)
	assert.False(t, visited)
}
