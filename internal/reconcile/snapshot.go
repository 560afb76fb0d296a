package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TopListLimit caps the ranked item and customer lists in a snapshot.
const TopListLimit = 10

// Snapshot is the final, immutable reporting structure handed to
// presentation collaborators.
type Snapshot struct {
	TotalViews   int64                `json:"total_views"`
	TotalOrders  int64                `json:"total_orders"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	TopItems     []TopItem            `json:"top_items"`
	TopCustomers []TopCustomer        `json:"top_customers"`
	Segmentation CustomerSegmentation `json:"customer_segmentation"`
}

// TopItem is one entry in the ranked item list.
type TopItem struct {
	Name            string          `json:"name"`
	TotalQuantity   int64           `json:"total_quantity"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AveragePrice    decimal.Decimal `json:"average_price"`
	OrderCount      int64           `json:"order_count"`
	UniqueCustomers int             `json:"unique_customers"`
}

// TopCustomer is one entry in the ranked customer list.
type TopCustomer struct {
	CustomerID  string          `json:"customer_id"`
	DisplayName string          `json:"display_name"`
	OrderCount  int64           `json:"order_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	FirstSeenAt time.Time       `json:"first_seen_at"`
	LastSeenAt  time.Time       `json:"last_seen_at"`
}

// CustomerSegmentation splits known customers into first-time and repeat
// buyers. New plus returning always equals the unique total.
type CustomerSegmentation struct {
	TotalUniqueCustomers int `json:"total_unique_customers"`
	NewCustomers         int `json:"new_customers"`
	ReturningCustomers   int `json:"returning_customers"`
}

// Compose assembles the accumulators into the final snapshot. It is total:
// empty accumulators produce an all-zero snapshot.
func Compose(totals Totals, items map[string]*ItemStats, customers map[string]*CustomerStats) Snapshot {
	return Snapshot{
		TotalViews:   totals.TotalViews,
		TotalOrders:  totals.TotalOrders,
		TotalRevenue: totals.TotalRevenue,
		TopItems:     rankItems(items),
		TopCustomers: rankCustomers(customers),
		Segmentation: segmentCustomers(customers),
	}
}

func rankItems(items map[string]*ItemStats) []TopItem {
	ranked := make([]TopItem, 0, len(items))
	for _, stats := range items {
		ranked = append(ranked, TopItem{
			Name:            stats.Name,
			TotalQuantity:   stats.TotalQuantity,
			TotalRevenue:    stats.TotalRevenue,
			AveragePrice:    averagePrice(stats),
			OrderCount:      stats.OrderCount,
			UniqueCustomers: stats.UniqueCustomers(),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalQuantity != ranked[j].TotalQuantity {
			return ranked[i].TotalQuantity > ranked[j].TotalQuantity
		}
		if !ranked[i].TotalRevenue.Equal(ranked[j].TotalRevenue) {
			return ranked[i].TotalRevenue.GreaterThan(ranked[j].TotalRevenue)
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > TopListLimit {
		ranked = ranked[:TopListLimit]
	}
	return ranked
}

func averagePrice(stats *ItemStats) decimal.Decimal {
	if stats.TotalQuantity == 0 {
		return decimal.Zero
	}
	return stats.TotalRevenue.Div(decimal.NewFromInt(stats.TotalQuantity))
}

func rankCustomers(customers map[string]*CustomerStats) []TopCustomer {
	ranked := make([]TopCustomer, 0, len(customers))
	for _, stats := range customers {
		ranked = append(ranked, TopCustomer{
			CustomerID:  stats.CustomerID,
			DisplayName: stats.DisplayName,
			OrderCount:  stats.OrderCount,
			TotalSpent:  stats.TotalSpent,
			FirstSeenAt: stats.FirstSeenAt,
			LastSeenAt:  stats.LastSeenAt,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].TotalSpent.Equal(ranked[j].TotalSpent) {
			return ranked[i].TotalSpent.GreaterThan(ranked[j].TotalSpent)
		}
		return ranked[i].CustomerID < ranked[j].CustomerID
	})
	if len(ranked) > TopListLimit {
		ranked = ranked[:TopListLimit]
	}
	return ranked
}

func segmentCustomers(customers map[string]*CustomerStats) CustomerSegmentation {
	segmentation := CustomerSegmentation{TotalUniqueCustomers: len(customers)}
	for _, stats := range customers {
		if stats.OrderCount == 1 {
			segmentation.NewCustomers++
		} else {
			segmentation.ReturningCustomers++
		}
	}
	return segmentation
}
