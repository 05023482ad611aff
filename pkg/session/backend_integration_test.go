//go:build integration

package session

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	prefix := fmt.Sprintf("sketchstack:test:%d:", time.Now().UnixNano())

	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: prefix, TTL: time.Minute, MaxSessions: 2})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()

	storeContract(t, store)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, sample(id)); err != nil {
			t.Fatalf("Set(%s): %v", id, err)
		}
	}
	if got, _ := store.Get(ctx, "a"); got != nil {
		t.Error("session beyond the cap not evicted")
	}
	if got, _ := store.Get(ctx, "c"); got == nil {
		t.Error("newest session evicted")
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err := store.Cleanup(ctx)
	if err != nil || n != 2 {
		t.Errorf("Cleanup() = %d, %v; want 2", n, err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	coll := fmt.Sprintf("sessions_test_%d", time.Now().UnixNano())

	store, err := NewMongoStore(ctx, MongoConfig{URI: uri, Collection: coll, TTL: time.Minute, MaxSessions: 2})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = store.coll.Drop(ctx)
		store.Close()
	}()

	storeContract(t, store)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, sample(id)); err != nil {
			t.Fatalf("Set(%s): %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got, _ := store.Get(ctx, "a"); got != nil {
		t.Error("session beyond the cap not evicted")
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if got, _ := store.Get(ctx, "c"); got != nil {
		t.Error("expired session returned")
	}
	n, err := store.Cleanup(ctx)
	if err != nil || n != 2 {
		t.Errorf("Cleanup() = %d, %v; want 2", n, err)
	}
}
