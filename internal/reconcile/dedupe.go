package reconcile

import "sort"

// OrderSet holds canonical orders keyed by identity. No two members share an
// identity key.
type OrderSet struct {
	byKey map[string]CanonicalOrder
}

// Deduplicate merges the three normalized streams into one set of unique
// orders. Streams are folded in fixed priority: order-source first, then
// report-source, then transaction-source. The first occurrence of an identity
// key wins; later sources never overwrite earlier ones, so the order
// collection stays authoritative when the same sale is recorded in more than
// one place.
func Deduplicate(orders, reports, transactions []CanonicalOrder) *OrderSet {
	set := &OrderSet{byKey: make(map[string]CanonicalOrder, len(orders)+len(reports)+len(transactions))}
	for _, stream := range [][]CanonicalOrder{orders, reports, transactions} {
		for _, order := range stream {
			if _, seen := set.byKey[order.IdentityKey]; seen {
				continue
			}
			set.byKey[order.IdentityKey] = order
		}
	}
	return set
}

// Len returns the number of unique orders.
func (s *OrderSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byKey)
}

// Get returns the order stored under the identity key.
func (s *OrderSet) Get(identityKey string) (CanonicalOrder, bool) {
	if s == nil {
		return CanonicalOrder{}, false
	}
	order, ok := s.byKey[identityKey]
	return order, ok
}

// Orders returns the set sorted by occurrence time ascending, identity key
// ascending on ties. Aggregation depends on this ordering for deterministic
// first-order semantics.
func (s *OrderSet) Orders() []CanonicalOrder {
	if s == nil || len(s.byKey) == 0 {
		return nil
	}
	orders := make([]CanonicalOrder, 0, len(s.byKey))
	for _, order := range s.byKey {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OccurredAt.Equal(orders[j].OccurredAt) {
			return orders[i].OccurredAt.Before(orders[j].OccurredAt)
		}
		return orders[i].IdentityKey < orders[j].IdentityKey
	})
	return orders
}
