package analytics

import (
	"time"

	"github.com/enochaseks/lokal-sub003/internal/reconcile"
	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

// SnapshotRequest asks for one store's reconciled analytics over a window.
type SnapshotRequest struct {
	StoreID string
	Start   time.Time
	End     time.Time
	// Refresh bypasses the cache and rebuilds from source records.
	Refresh bool
}

// Window is the resolved reporting window echoed back to callers.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SnapshotResponse is the composed snapshot plus request metadata.
type SnapshotResponse struct {
	StoreID        string             `json:"storeId"`
	Currency       enums.Currency     `json:"currency"`
	Window         Window             `json:"window"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	SkippedRecords int                `json:"skippedRecords"`
	Snapshot       reconcile.Snapshot `json:"snapshot"`
}

// OrdersRequest asks for the deduplicated order list backing a snapshot.
type OrdersRequest struct {
	StoreID string
	Start   time.Time
	End     time.Time
	Limit   int
	Cursor  string
}

// OrdersResponse is one page of deduplicated orders in occurrence order.
type OrdersResponse struct {
	StoreID    string                     `json:"storeId"`
	Window     Window                     `json:"window"`
	Orders     []reconcile.CanonicalOrder `json:"orders"`
	NextCursor string                     `json:"nextCursor,omitempty"`
}
