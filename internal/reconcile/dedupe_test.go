package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

func canonical(source enums.SourceKind, key string, occurredAt time.Time, amount string) CanonicalOrder {
	value, _ := decimal.NewFromString(amount)
	return CanonicalOrder{
		IdentityKey:  key,
		Source:       source,
		CustomerName: UnknownCustomerName,
		OccurredAt:   occurredAt,
		Amount:       value,
	}
}

func TestDeduplicateSourcePriority(t *testing.T) {
	now := time.Now().UTC()

	orders := []CanonicalOrder{canonical(enums.SourceKindOrder, "X", now, "10.00")}
	transactions := []CanonicalOrder{canonical(enums.SourceKindTransaction, "X", now, "12.00")}

	set := Deduplicate(orders, nil, transactions)
	if set.Len() != 1 {
		t.Fatalf("expected 1 unique order, got %d", set.Len())
	}
	kept, ok := set.Get("X")
	if !ok {
		t.Fatal("expected entry for X")
	}
	if kept.Source != enums.SourceKindOrder {
		t.Fatalf("order source should be authoritative, got %s", kept.Source)
	}
	if !kept.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("first-seen amount should win, got %s", kept.Amount)
	}
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	orders := []CanonicalOrder{
		canonical(enums.SourceKindOrder, "A", now, "1.00"),
		canonical(enums.SourceKindOrder, "B", now.Add(time.Minute), "2.00"),
	}
	reports := []CanonicalOrder{canonical(enums.SourceKindReport, "A", now, "1.00")}

	first := Deduplicate(orders, reports, nil)
	second := Deduplicate(orders, reports, nil)

	if first.Len() != second.Len() {
		t.Fatalf("runs disagree on size: %d vs %d", first.Len(), second.Len())
	}
	firstOrders := first.Orders()
	secondOrders := second.Orders()
	for i := range firstOrders {
		if firstOrders[i].IdentityKey != secondOrders[i].IdentityKey {
			t.Fatalf("runs disagree at %d: %s vs %s", i, firstOrders[i].IdentityKey, secondOrders[i].IdentityKey)
		}
	}
}

func TestDeduplicateNoDuplicateKeys(t *testing.T) {
	now := time.Now().UTC()
	set := Deduplicate(
		[]CanonicalOrder{canonical(enums.SourceKindOrder, "A", now, "1.00")},
		[]CanonicalOrder{canonical(enums.SourceKindReport, "A", now, "1.00"), canonical(enums.SourceKindReport, "B", now, "3.00")},
		[]CanonicalOrder{canonical(enums.SourceKindTransaction, "B", now, "3.00")},
	)

	seen := map[string]bool{}
	for _, order := range set.Orders() {
		if seen[order.IdentityKey] {
			t.Fatalf("duplicate identity key %q in set", order.IdentityKey)
		}
		seen[order.IdentityKey] = true
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 unique orders, got %d", set.Len())
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	set := Deduplicate(nil, nil, nil)
	if set.Len() != 0 {
		t.Fatalf("expected empty set, got %d", set.Len())
	}
	if set.Orders() != nil {
		t.Fatal("expected nil order slice for empty set")
	}
}

func TestOrdersSortedByOccurrence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	set := Deduplicate([]CanonicalOrder{
		canonical(enums.SourceKindOrder, "late", base.Add(2*time.Hour), "1.00"),
		canonical(enums.SourceKindOrder, "early", base, "1.00"),
		canonical(enums.SourceKindOrder, "b-tie", base.Add(time.Hour), "1.00"),
		canonical(enums.SourceKindOrder, "a-tie", base.Add(time.Hour), "1.00"),
	}, nil, nil)

	got := set.Orders()
	want := []string{"early", "a-tie", "b-tie", "late"}
	for i, key := range want {
		if got[i].IdentityKey != key {
			t.Fatalf("position %d: got %s want %s", i, got[i].IdentityKey, key)
		}
	}
}
