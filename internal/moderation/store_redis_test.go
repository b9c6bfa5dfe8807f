package moderation

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

func TestRedisStoreIncrAndCount(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	if count, err := store.Count(ctx, "nobody"); err != nil || count != 0 {
		t.Fatalf("Count(missing) = %d, %v; want 0, nil", count, err)
	}

	for want := 1; want <= 3; want++ {
		got, err := store.Incr(ctx, "menace")
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Errorf("Incr #%d = %d", want, got)
		}
	}

	if count, err := store.Count(ctx, "menace"); err != nil || count != 3 {
		t.Errorf("Count = %d, %v; want 3, nil", count, err)
	}

	// Counters are per user.
	if count, err := store.Count(ctx, "someoneelse"); err != nil || count != 0 {
		t.Errorf("Count(other) = %d, %v; want 0, nil", count, err)
	}
}

func TestRedisStoreSharedAcrossRooms(t *testing.T) {
	// The store keys by user only; a policy engine per room must still see
	// one shared count.
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := NewRedisStore(rdb)
	b := NewRedisStore(rdb)
	ctx := context.Background()

	if _, err := a.Incr(ctx, "menace"); err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if count, err := b.Count(ctx, "menace"); err != nil || count != 1 {
		t.Errorf("Count via second store = %d, %v; want 1, nil", count, err)
	}
}
