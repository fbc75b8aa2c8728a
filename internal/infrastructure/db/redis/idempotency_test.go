package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client), mr
}

func TestIdempotencyKey(t *testing.T) {
	got := idempotencyKey("42", "abc-123")
	if got != "idempotency:tasks:42:abc-123" {
		t.Errorf("unexpected key: %q", got)
	}
	if idempotencyKey("1", "k") == idempotencyKey("2", "k") {
		t.Error("keys for different owners must not collide")
	}
}

func TestIdempotencyStore_LookupMiss(t *testing.T) {
	store, _ := newTestStore(t)

	id, found, err := store.Lookup(context.Background(), "1", "k")
	if err != nil || found || id != "" {
		t.Fatalf("expected miss, got id=%q found=%v err=%v", id, found, err)
	}
}

func TestIdempotencyStore_RememberThenLookup(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Remember(ctx, "1", "k", "t1"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	id, found, err := store.Lookup(ctx, "1", "k")
	if err != nil || !found || id != "t1" {
		t.Fatalf("expected hit on t1, got id=%q found=%v err=%v", id, found, err)
	}
	if ttl := mr.TTL("idempotency:tasks:1:k"); ttl != idempotencyTTL {
		t.Errorf("expected ttl %v, got %v", idempotencyTTL, ttl)
	}
	if _, found, _ := store.Lookup(ctx, "2", "k"); found {
		t.Error("key must not be visible to another owner")
	}
}

func TestIdempotencyStore_RememberReplacesStaleEntry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.Remember(ctx, "1", "k", "deleted-task")
	if err := store.Remember(ctx, "1", "k", "t2"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	id, _, _ := store.Lookup(ctx, "1", "k")
	if id != "t2" {
		t.Fatalf("expected entry to point at t2, got %q", id)
	}
}

func TestIdempotencyStore_EntryExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_ = store.Remember(ctx, "1", "k", "t1")
	mr.FastForward(idempotencyTTL + time.Second)

	if _, found, err := store.Lookup(ctx, "1", "k"); err != nil || found {
		t.Fatalf("expected expired entry, got found=%v err=%v", found, err)
	}
}

func TestIdempotencyStore_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, found, err := store.Lookup(ctx, "1", "k"); err == nil || found {
		t.Errorf("expected lookup error, got found=%v err=%v", found, err)
	}
	if err := store.Remember(ctx, "1", "k", "t1"); err == nil {
		t.Error("expected remember error")
	}
}
