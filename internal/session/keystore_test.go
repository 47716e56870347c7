package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"boardserver/internal/domain"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *RedisKeyStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKeyStore(client, time.Second)
}

func TestSetMarkerNXIsConditional(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.SetMarkerNX(ctx, "session:alice", "first", time.Minute)
	if err != nil {
		t.Fatalf("SetMarkerNX() error: %v", err)
	}
	if !ok {
		t.Fatalf("SetMarkerNX() first write not accepted")
	}

	ok, err = store.SetMarkerNX(ctx, "session:alice", "second", time.Minute)
	if err != nil {
		t.Fatalf("SetMarkerNX() error: %v", err)
	}
	if ok {
		t.Fatalf("SetMarkerNX() overwrote an existing marker")
	}

	value, err := store.GetMarker(ctx, "session:alice")
	if err != nil {
		t.Fatalf("GetMarker() error: %v", err)
	}
	if value != "first" {
		t.Fatalf("GetMarker() = %q, want %q", value, "first")
	}
}

func TestSetMarkerNXAfterExpiry(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SetMarkerNX(ctx, "session:alice", "first", time.Minute); err != nil {
		t.Fatalf("SetMarkerNX() error: %v", err)
	}
	mr.FastForward(time.Minute + time.Second)

	ok, err := store.SetMarkerNX(ctx, "session:alice", "second", time.Minute)
	if err != nil {
		t.Fatalf("SetMarkerNX() error: %v", err)
	}
	if !ok {
		t.Fatalf("SetMarkerNX() rejected after marker expiry")
	}
}

func TestGetMarkerMissing(t *testing.T) {
	_, store := newTestStore(t)

	_, err := store.GetMarker(context.Background(), "session:ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetMarker() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMarkerIdempotent(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	if err := store.DeleteMarker(ctx, "session:absent"); err != nil {
		t.Fatalf("DeleteMarker() on absent key: %v", err)
	}
}

func TestAddSetMemberDeduplicatesAndRefreshesTTL(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	for _, member := range []string{"alice", "bob", "alice", "carol"} {
		if err := store.AddSetMember(ctx, "visitors:2026-08-27", member, time.Hour); err != nil {
			t.Fatalf("AddSetMember(%s) error: %v", member, err)
		}
	}

	n, err := store.SetCardinality(ctx, "visitors:2026-08-27")
	if err != nil {
		t.Fatalf("SetCardinality() error: %v", err)
	}
	if n != 3 {
		t.Fatalf("SetCardinality() = %d, want 3", n)
	}

	mr.FastForward(30 * time.Minute)
	if err := store.AddSetMember(ctx, "visitors:2026-08-27", "dave", time.Hour); err != nil {
		t.Fatalf("AddSetMember() error: %v", err)
	}
	if ttl := mr.TTL("visitors:2026-08-27"); ttl != time.Hour {
		t.Fatalf("TTL after refresh = %v, want %v", ttl, time.Hour)
	}
}

func TestSetCardinalityAbsentSet(t *testing.T) {
	_, store := newTestStore(t)

	n, err := store.SetCardinality(context.Background(), "visitors:2099-01-01")
	if err != nil {
		t.Fatalf("SetCardinality() error: %v", err)
	}
	if n != 0 {
		t.Fatalf("SetCardinality() on absent set = %d, want 0", n)
	}
}

func TestStoreUnreachableSurfacesAsUnavailable(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	if _, err := store.SetMarkerNX(context.Background(), "session:alice", "v", time.Minute); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("SetMarkerNX() error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := store.SetCardinality(context.Background(), "visitors:2026-08-27"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("SetCardinality() error = %v, want ErrStoreUnavailable", err)
	}
}
