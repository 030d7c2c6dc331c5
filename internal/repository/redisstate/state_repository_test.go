package redisstate

import (
	"context"
	"os"
	"testing"
	"time"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *StateRepository {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis state store test")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return NewStateRepository(rdb, time.Minute, logger.NewNopLogger())
}

func TestStateRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Clear(ctx, id) })

	_, ok := repo.Get(ctx, id)
	assert.False(t, ok)

	st := entity.NewSearchState(id)
	st.Turns = append(st.Turns, entity.SearchTurn{OriginalQuery: "q", UsedQuery: "q", Provider: "tavily"})
	require.NoError(t, repo.Set(ctx, st))

	got, ok := repo.Get(ctx, id)
	require.True(t, ok)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "q", got.Turns[0].OriginalQuery)

	require.NoError(t, repo.Clear(ctx, id))
	_, ok = repo.Get(ctx, id)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "smart_search:state:abc", Key("abc"))
}
