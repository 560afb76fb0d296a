package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type memoryCacheStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCacheStore() *memoryCacheStore {
	return &memoryCacheStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memoryCacheStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheStore) SnapshotKey(storeID, window string) string {
	return "lokal:snapshot:" + storeID + ":" + window
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	store := newMemoryCacheStore()
	cache, err := NewSnapshotCache(store, 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	window := Window{
		From: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	}
	resp := &SnapshotResponse{StoreID: "s1", Window: window, SkippedRecords: 2}
	if err := cache.Set(context.Background(), resp); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	got, hit, err := cache.Get(context.Background(), "s1", window)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !hit {
		t.Fatalf("expected a cache hit")
	}
	if got.StoreID != "s1" || got.SkippedRecords != 2 {
		t.Fatalf("unexpected cached snapshot: %+v", got)
	}
}

func TestSnapshotCacheMissOnAbsentKey(t *testing.T) {
	cache, err := NewSnapshotCache(newMemoryCacheStore(), time.Minute)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	window := Window{From: time.Now().UTC(), To: time.Now().UTC().Add(time.Hour)}
	_, hit, err := cache.Get(context.Background(), "s1", window)
	if err != nil {
		t.Fatalf("absent key must not error: %v", err)
	}
	if hit {
		t.Fatalf("expected a miss")
	}
}

func TestSnapshotCacheCorruptEntryBehavesAsMiss(t *testing.T) {
	store := newMemoryCacheStore()
	cache, err := NewSnapshotCache(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	window := Window{
		From: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC),
	}
	key := store.SnapshotKey("s1", "2026-07-01T00:00:00Z..2026-07-02T00:00:00Z")
	store.values[key] = "{not json"

	_, hit, err := cache.Get(context.Background(), "s1", window)
	if err != nil {
		t.Fatalf("corrupt entry must not error: %v", err)
	}
	if hit {
		t.Fatalf("expected corrupt entry to behave as a miss")
	}
}

func TestSnapshotCacheKeySpansWindow(t *testing.T) {
	store := newMemoryCacheStore()
	cache, err := NewSnapshotCache(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	window := Window{
		From: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	}
	resp := &SnapshotResponse{StoreID: "s1", Window: window}
	if err := cache.Set(context.Background(), resp); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	for key, ttl := range store.ttls {
		if !strings.Contains(key, "2026-07-01T00:00:00Z..2026-07-31T00:00:00Z") {
			t.Fatalf("expected key to embed the window span, got %s", key)
		}
		if ttl != time.Minute {
			t.Fatalf("expected configured ttl, got %s", ttl)
		}
	}
	if len(store.ttls) != 1 {
		t.Fatalf("expected exactly one cache entry, got %d", len(store.ttls))
	}
}
