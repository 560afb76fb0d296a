package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(storeID, window string) string
}

// SnapshotCache stores composed snapshots in Redis keyed by store and window.
type SnapshotCache struct {
	store cacheStore
	ttl   time.Duration
}

// NewSnapshotCache builds a snapshot cache with the provided TTL.
func NewSnapshotCache(store cacheStore, ttl time.Duration) (*SnapshotCache, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}
	return &SnapshotCache{store: store, ttl: ttl}, nil
}

// Get returns the cached snapshot for the window, if present.
func (c *SnapshotCache) Get(ctx context.Context, storeID string, window Window) (*SnapshotResponse, bool, error) {
	raw, err := c.store.Get(ctx, c.key(storeID, window))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("snapshot cache get: %w", err)
	}

	var resp SnapshotResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		// A stale or incompatible entry behaves like a miss.
		return nil, false, nil
	}
	return &resp, true, nil
}

// Set stores the snapshot for the window with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, resp *SnapshotResponse) error {
	if resp == nil {
		return errors.New("snapshot response is required")
	}
	encoded, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("snapshot cache marshal: %w", err)
	}
	key := c.key(resp.StoreID, resp.Window)
	if err := c.store.Set(ctx, key, string(encoded), c.ttl); err != nil {
		return fmt.Errorf("snapshot cache set: %w", err)
	}
	return nil
}

func (c *SnapshotCache) key(storeID string, window Window) string {
	span := window.From.UTC().Format(time.RFC3339) + ".." + window.To.UTC().Format(time.RFC3339)
	return c.store.SnapshotKey(storeID, span)
}
