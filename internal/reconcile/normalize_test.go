package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestNormalizeResolvesTimestampPerSource(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	collected := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)

	records := []RawRecord{
		{Source: enums.SourceKindOrder, ID: "o1", CreatedAt: timePtr(created)},
		{Source: enums.SourceKindReport, ID: "r1", CompletedAt: timePtr(completed), CreatedAt: timePtr(created)},
		{Source: enums.SourceKindReport, ID: "r2", CreatedAt: timePtr(created)},
		{Source: enums.SourceKindTransaction, ID: "t1", CollectedAt: timePtr(collected)},
	}

	orders, skipped := Normalize(records)
	if len(skipped) != 0 {
		t.Fatalf("expected no skips, got %d", len(skipped))
	}
	if len(orders) != 4 {
		t.Fatalf("expected 4 orders, got %d", len(orders))
	}
	if !orders[0].OccurredAt.Equal(created) {
		t.Fatalf("order source should use created_at, got %v", orders[0].OccurredAt)
	}
	if !orders[1].OccurredAt.Equal(completed) {
		t.Fatalf("report source should prefer completed_at, got %v", orders[1].OccurredAt)
	}
	if !orders[2].OccurredAt.Equal(created) {
		t.Fatalf("report source should fall back to created_at, got %v", orders[2].OccurredAt)
	}
	if !orders[3].OccurredAt.Equal(collected) {
		t.Fatalf("transaction source should use collected_at, got %v", orders[3].OccurredAt)
	}
}

func TestNormalizeDropsRecordsWithoutTimestamp(t *testing.T) {
	records := []RawRecord{
		{Source: enums.SourceKindOrder, ID: "no-time"},
		{Source: enums.SourceKindOrder, ID: "ok", CreatedAt: timePtr(time.Now().UTC())},
	}

	orders, skipped := Normalize(records)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(skipped))
	}
	if skipped[0].ID != "no-time" || skipped[0].Reason != SkipReasonNoTimestamp {
		t.Fatalf("unexpected skip: %+v", skipped[0])
	}
}

func TestNormalizeAmountFallbacks(t *testing.T) {
	now := timePtr(time.Now().UTC())
	cases := []struct {
		name   string
		record RawRecord
		want   string
	}{
		{"total amount preferred", RawRecord{TotalAmount: "25.50", Amount: "1.00"}, "25.5"},
		{"amount fallback", RawRecord{Amount: "12.30"}, "12.3"},
		{"non-numeric normalizes to zero", RawRecord{TotalAmount: "not-a-number"}, "0"},
		{"negative normalizes to zero", RawRecord{TotalAmount: "-5.00"}, "0"},
		{"missing defaults to zero", RawRecord{}, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := tc.record
			record.Source = enums.SourceKindOrder
			record.ID = "id"
			record.CreatedAt = now

			orders, _ := Normalize([]RawRecord{record})
			if len(orders) != 1 {
				t.Fatalf("expected 1 order, got %d", len(orders))
			}
			want, _ := decimal.NewFromString(tc.want)
			if !orders[0].Amount.Equal(want) {
				t.Fatalf("amount mismatch: got %s want %s", orders[0].Amount, want)
			}
		})
	}
}

func TestNormalizeCustomerIdentity(t *testing.T) {
	now := timePtr(time.Now().UTC())

	orders, _ := Normalize([]RawRecord{
		{Source: enums.SourceKindOrder, ID: "a", BuyerID: "b1", CustomerID: "c1", CreatedAt: now},
		{Source: enums.SourceKindOrder, ID: "b", CustomerID: "c2", CreatedAt: now},
		{Source: enums.SourceKindOrder, ID: "c", CreatedAt: now},
	})

	if orders[0].CustomerID != "b1" {
		t.Fatalf("buyer id should win, got %q", orders[0].CustomerID)
	}
	if orders[1].CustomerID != "c2" {
		t.Fatalf("customer id fallback failed, got %q", orders[1].CustomerID)
	}
	if orders[2].CustomerID != "" {
		t.Fatalf("missing identity should stay empty, got %q", orders[2].CustomerID)
	}
	if orders[2].CustomerName != UnknownCustomerName {
		t.Fatalf("missing name should default, got %q", orders[2].CustomerName)
	}
}

func TestNormalizeIdentityKeyFallsBackToID(t *testing.T) {
	now := timePtr(time.Now().UTC())

	orders, _ := Normalize([]RawRecord{
		{Source: enums.SourceKindOrder, ID: "local-1", OrderRef: "ORD-9", CreatedAt: now},
		{Source: enums.SourceKindOrder, ID: "local-2", CreatedAt: now},
	})

	if orders[0].IdentityKey != "ORD-9" {
		t.Fatalf("order ref should win, got %q", orders[0].IdentityKey)
	}
	if orders[1].IdentityKey != "local-2" {
		t.Fatalf("id fallback failed, got %q", orders[1].IdentityKey)
	}
}

func TestNormalizeLineItemFloors(t *testing.T) {
	now := timePtr(time.Now().UTC())

	orders, _ := Normalize([]RawRecord{{
		Source:    enums.SourceKindOrder,
		ID:        "a",
		CreatedAt: now,
		Items: []RawItem{
			{Name: "Jollof Rice", Quantity: 0, Price: "7.50"},
			{Name: "Suya", Quantity: 3, Price: "bad-price"},
		},
	}})

	items := orders[0].LineItems
	if items[0].Quantity != 1 {
		t.Fatalf("quantity should floor at 1, got %d", items[0].Quantity)
	}
	if !items[1].UnitPrice.Equal(decimal.Zero) {
		t.Fatalf("malformed price should normalize to zero, got %s", items[1].UnitPrice)
	}
	if items[1].Quantity != 3 {
		t.Fatalf("valid quantity kept, got %d", items[1].Quantity)
	}
}
