package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals carries the running top-line counters for one aggregation run.
// TotalViews is not derived from sale records; the caller supplies it before
// composing the snapshot.
type Totals struct {
	TotalViews   int64
	TotalOrders  int64
	TotalRevenue decimal.Decimal
}

// ItemStats accumulates per-item sales across the deduplicated set.
type ItemStats struct {
	Name          string
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
	OrderCount    int64

	customerIDs map[string]struct{}
}

// UniqueCustomers returns the number of distinct known customers that bought
// this item.
func (i *ItemStats) UniqueCustomers() int {
	return len(i.customerIDs)
}

// CustomerStats accumulates one customer's purchase history.
type CustomerStats struct {
	CustomerID  string
	DisplayName string
	OrderCount  int64
	TotalSpent  decimal.Decimal
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Aggregate folds the deduplicated set into running totals, per-item
// accumulators, and per-customer accumulators in a single pass. The pass runs
// in occurrence order so first-seen fields resolve deterministically. Orders
// without a customer identity still count toward totals and item stats but
// are excluded from per-customer accumulation.
func Aggregate(set *OrderSet) (Totals, map[string]*ItemStats, map[string]*CustomerStats) {
	totals := Totals{TotalRevenue: decimal.Zero}
	items := make(map[string]*ItemStats)
	customers := make(map[string]*CustomerStats)

	for _, order := range set.Orders() {
		totals.TotalOrders++
		totals.TotalRevenue = totals.TotalRevenue.Add(order.Amount)

		// OrderCount is distinct orders containing the item, so repeated
		// lines for one name count the order once.
		counted := make(map[string]struct{}, len(order.LineItems))
		for _, line := range order.LineItems {
			stats, ok := items[line.Name]
			if !ok {
				stats = &ItemStats{
					Name:         line.Name,
					TotalRevenue: decimal.Zero,
					customerIDs:  make(map[string]struct{}),
				}
				items[line.Name] = stats
			}
			stats.TotalQuantity += int64(line.Quantity)
			stats.TotalRevenue = stats.TotalRevenue.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			if _, seen := counted[line.Name]; !seen {
				counted[line.Name] = struct{}{}
				stats.OrderCount++
			}
			if order.CustomerID != "" {
				stats.customerIDs[order.CustomerID] = struct{}{}
			}
		}

		if order.CustomerID == "" {
			continue
		}
		customer, ok := customers[order.CustomerID]
		if !ok {
			customer = &CustomerStats{
				CustomerID:  order.CustomerID,
				DisplayName: order.CustomerName,
				TotalSpent:  decimal.Zero,
				FirstSeenAt: order.OccurredAt,
				LastSeenAt:  order.OccurredAt,
			}
			customers[order.CustomerID] = customer
		}
		customer.OrderCount++
		customer.TotalSpent = customer.TotalSpent.Add(order.Amount)
		if order.OccurredAt.Before(customer.FirstSeenAt) {
			customer.FirstSeenAt = order.OccurredAt
		}
		if order.OccurredAt.After(customer.LastSeenAt) {
			customer.LastSeenAt = order.OccurredAt
		}
	}

	return totals, items, customers
}
