package kvs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestRedisStore_StringRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "data:abc", `{"id":"abc"}`, time.Minute))

	val, err := s.Get(ctx, "data:abc")
	require.NoError(t, err)
	require.Equal(t, `{"id":"abc"}`, val)

	_, err = s.Get(ctx, "data:missing")
	require.Error(t, err)
}

func TestRedisStore_MGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "a", "1", 0))
	require.NoError(t, s.Set(ctx, "b", "2", 0))

	vals, err := s.MGet(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", ""}, vals)
}

func TestRedisStore_ZAddAndRank(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ZAdd(ctx, "sorted:updatedAt:asc",
		Member{Score: 1, Value: "a"},
		Member{Score: 2, Value: "b"},
		Member{Score: 3, Value: "c"},
	))

	rank, found, err := s.ZRank(ctx, "sorted:updatedAt:asc", "b", false)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), rank)

	rankDesc, found, err := s.ZRank(ctx, "sorted:updatedAt:asc", "b", true)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), rankDesc)

	card, err := s.ZCard(ctx, "sorted:updatedAt:asc")
	require.NoError(t, err)
	require.Equal(t, int64(3), card)
}

func TestRedisStore_ZRangeByRank(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ZAdd(ctx, "k",
		Member{Score: 1, Value: "a"},
		Member{Score: 2, Value: "b"},
		Member{Score: 3, Value: "c"},
	))

	vals, err := s.ZRangeByRank(ctx, "k", 0, -1, false)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, vals)

	valsDesc, err := s.ZRangeByRank(ctx, "k", 0, -1, true)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, valsDesc)
}

func TestRedisStore_ZRem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ZAdd(ctx, "k", Member{Score: 1, Value: "a"}, Member{Score: 2, Value: "b"}))
	require.NoError(t, s.ZRem(ctx, "k", "a"))

	card, err := s.ZCard(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, int64(1), card)
}

func TestRedisStore_ScanPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "sorted:updatedAt:asc", "x", 0))
	require.NoError(t, s.Set(ctx, "sorted:createdAt:desc", "y", 0))
	require.NoError(t, s.Set(ctx, "data:abc", "z", 0))

	keys, err := s.ScanPrefix(ctx, "sorted:")
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestRedisStore_DBSizeAndFlush(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "a", "1", 0))
	require.NoError(t, s.Set(ctx, "b", "2", 0))

	size, err := s.DBSize(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), size)

	require.NoError(t, s.FlushDB(ctx))

	size, err = s.DBSize(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
}

func TestRedisStore_Batch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	batch := s.Batch()
	batch.Set("data:a", `{"id":"a"}`, 0)
	batch.ZAdd("sorted:updatedAt:asc", Member{Score: 1, Value: "a"})
	require.NoError(t, batch.Exec(ctx))

	val, err := s.Get(ctx, "data:a")
	require.NoError(t, err)
	require.Equal(t, `{"id":"a"}`, val)

	card, err := s.ZCard(ctx, "sorted:updatedAt:asc")
	require.NoError(t, err)
	require.Equal(t, int64(1), card)
}

func TestRedisStore_Ping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ping(ctx))
}
