// Package reconcile merges a store's three independently populated sale
// collections into one deduplicated order set and an analytics snapshot.
//
// The pipeline is strictly one-directional: raw records are normalized into a
// canonical shape, deduplicated across sources, folded into accumulators, and
// composed into a snapshot. Every stage is a pure transformation over
// already-materialized inputs; fetching, caching, and retries belong to the
// callers that supply the records.
package reconcile

// Input holds the three raw-record streams for one store and time window,
// already filtered by the caller, plus the store view count for the same
// window.
type Input struct {
	Orders       []RawRecord
	Reports      []RawRecord
	Transactions []RawRecord
	Views        int64
}

// Result is the output of a full reconciliation run.
type Result struct {
	Snapshot Snapshot
	// Orders is the deduplicated set in occurrence order, for collaborators
	// that render an order-by-order list.
	Orders  []CanonicalOrder
	Skipped []SkippedRecord
}

// Reconcile runs the full pipeline over one store's records. It never fails:
// malformed records degrade per-record and an empty input yields an all-zero
// snapshot.
func Reconcile(input Input) Result {
	orders, skippedOrders := Normalize(input.Orders)
	reports, skippedReports := Normalize(input.Reports)
	transactions, skippedTransactions := Normalize(input.Transactions)

	set := Deduplicate(orders, reports, transactions)

	totals, items, customers := Aggregate(set)
	totals.TotalViews = input.Views

	skipped := make([]SkippedRecord, 0, len(skippedOrders)+len(skippedReports)+len(skippedTransactions))
	skipped = append(skipped, skippedOrders...)
	skipped = append(skipped, skippedReports...)
	skipped = append(skipped, skippedTransactions...)

	return Result{
		Snapshot: Compose(totals, items, customers),
		Orders:   set.Orders(),
		Skipped:  skipped,
	}
}
