package moderation

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps zero-tolerance counters in redis so the monotonic
// escalation survives restarts. Keys have no TTL on purpose.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// NewRedisStoreURL connects using a redis URL (redis://host:port/db).
func NewRedisStoreURL(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, err
	}
	return &RedisStore{rdb: redis.NewClient(opts)}, nil
}

func (s *RedisStore) key(userID string) string { return "ztol:" + strings.TrimSpace(userID) }

func (s *RedisStore) Incr(ctx context.Context, userID string) (int, error) {
	n, err := s.rdb.Incr(ctx, s.key(userID)).Result()
	return int(n), err
}

func (s *RedisStore) Count(ctx context.Context, userID string) (int, error) {
	n, err := s.rdb.Get(ctx, s.key(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
