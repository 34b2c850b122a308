// Package kvs abstracts the fast in-memory store the collection index
// engine is built on: strings with TTL, ordered sets for ranked views, and
// prefix scans for maintenance sweeps. The Redis client backs it the same
// way redis/go-redis backed the job queue this package replaces.
package kvs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/collectionvault/index-engine/internal/shared"
)

// Member is a scored entry in an ordered set.
type Member struct {
	Score  float64
	Value  string
}

// Store is the key-value/sorted-set adapter the index engine depends on.
type Store interface {
	// Strings
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	MGet(ctx context.Context, keys []string) ([]string, error)
	Del(ctx context.Context, keys ...string) error

	// Ordered sets
	ZAdd(ctx context.Context, key string, members ...Member) error
	ZRem(ctx context.Context, key string, values ...string) error
	ZRank(ctx context.Context, key, value string, desc bool) (int64, bool, error)
	ZRangeByRank(ctx context.Context, key string, start, stop int64, desc bool) ([]string, error)
	ZCard(ctx context.Context, key string) (int64, error)

	// Maintenance
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	DBSize(ctx context.Context) (int64, error)
	FlushDB(ctx context.Context) error

	// Batch returns a scoped batch that pipelines writes and sends them in
	// one round trip when Exec is called. The commands are not wrapped in a
	// transaction: a failing command does not undo the others.
	Batch() Batch

	Ping(ctx context.Context) error
}

// Batch accumulates commands for a single round trip. Implementations may
// use native pipelining; observable ordering must equal issuing the same
// commands one at a time.
type Batch interface {
	ZAdd(key string, members ...Member)
	Set(key, value string, ttl time.Duration)
	Del(keys ...string)
	Exec(ctx context.Context) error
}

// RedisStore is the production Store backed by go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing go-redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", shared.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[i] = s
		}
	}
	return out, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *RedisStore) ZAdd(ctx context.Context, key string, members ...Member) error {
	if len(members) == 0 {
		return nil
	}
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: m.Score, Member: m.Value}
	}
	if err := s.client.ZAdd(ctx, key, zs...).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *RedisStore) ZRem(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	members := make([]interface{}, len(values))
	for i, v := range values {
		members[i] = v
	}
	if err := s.client.ZRem(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *RedisStore) ZRank(ctx context.Context, key, value string, desc bool) (int64, bool, error) {
	var rank int64
	var err error
	if desc {
		rank, err = s.client.ZRevRank(ctx, key, value).Result()
	} else {
		rank, err = s.client.ZRank(ctx, key, value).Result()
	}
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return rank, true, nil
}

func (s *RedisStore) ZRangeByRank(ctx context.Context, key string, start, stop int64, desc bool) ([]string, error) {
	var vals []string
	var err error
	if desc {
		vals, err = s.client.ZRevRange(ctx, key, start, stop).Result()
	} else {
		vals, err = s.client.ZRange(ctx, key, start, stop).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return vals, nil
}

func (s *RedisStore) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return n, nil
}

func (s *RedisStore) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return out, nil
}

func (s *RedisStore) DBSize(ctx context.Context) (int64, error) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return n, nil
}

func (s *RedisStore) FlushDB(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *RedisStore) Batch() Batch {
	return &redisBatch{pipe: s.client.Pipeline()}
}

type redisBatch struct {
	pipe redis.Pipeliner
}

func (b *redisBatch) ZAdd(key string, members ...Member) {
	if len(members) == 0 {
		return
	}
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: m.Score, Member: m.Value}
	}
	b.pipe.ZAdd(context.Background(), key, zs...)
}

func (b *redisBatch) Set(key, value string, ttl time.Duration) {
	b.pipe.Set(context.Background(), key, value, ttl)
}

func (b *redisBatch) Del(keys ...string) {
	if len(keys) == 0 {
		return
	}
	b.pipe.Del(context.Background(), keys...)
}

func (b *redisBatch) Exec(ctx context.Context) error {
	if _, err := b.pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}
