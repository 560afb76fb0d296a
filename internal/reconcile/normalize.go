package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

// SkipReason explains why the normalizer excluded a record.
type SkipReason string

const (
	// SkipReasonNoTimestamp marks records with no resolvable sale moment.
	SkipReasonNoTimestamp SkipReason = "no_resolvable_timestamp"
)

// SkippedRecord describes a raw record the normalizer dropped. Skips are a
// data-quality signal for observability, never an error.
type SkippedRecord struct {
	Source enums.SourceKind
	ID     string
	Reason SkipReason
}

// Normalize converts raw records into canonical orders, in arrival order.
// Records with no resolvable timestamp are dropped and reported in the second
// return value. Malformed amounts normalize to zero so a single bad record
// cannot zero out an entire report.
func Normalize(records []RawRecord) ([]CanonicalOrder, []SkippedRecord) {
	orders := make([]CanonicalOrder, 0, len(records))
	var skipped []SkippedRecord

	for _, record := range records {
		occurredAt, ok := resolveTimestamp(record)
		if !ok {
			skipped = append(skipped, SkippedRecord{
				Source: record.Source,
				ID:     record.ID,
				Reason: SkipReasonNoTimestamp,
			})
			continue
		}

		orders = append(orders, CanonicalOrder{
			IdentityKey:  record.identityKey(),
			Source:       record.Source,
			CustomerID:   resolveCustomerID(record),
			CustomerName: resolveCustomerName(record),
			OccurredAt:   occurredAt,
			Amount:       resolveAmount(record),
			LineItems:    normalizeItems(record.Items),
		})
	}

	return orders, skipped
}

// resolveTimestamp tries the source-specific timestamp fields in priority
// order. Each collection places "the moment this became a finalized sale" in
// a different field, with created_at as the shared fallback.
func resolveTimestamp(record RawRecord) (time.Time, bool) {
	var candidates []*time.Time
	switch record.Source {
	case enums.SourceKindReport:
		candidates = []*time.Time{record.CompletedAt, record.CreatedAt}
	case enums.SourceKindTransaction:
		candidates = []*time.Time{record.CollectedAt, record.CreatedAt}
	default:
		candidates = []*time.Time{record.CreatedAt}
	}

	for _, candidate := range candidates {
		if candidate != nil && !candidate.IsZero() {
			return candidate.UTC(), true
		}
	}
	return time.Time{}, false
}

func resolveCustomerID(record RawRecord) string {
	if id := strings.TrimSpace(record.BuyerID); id != "" {
		return id
	}
	return strings.TrimSpace(record.CustomerID)
}

func resolveCustomerName(record RawRecord) string {
	if name := strings.TrimSpace(record.BuyerName); name != "" {
		return name
	}
	return UnknownCustomerName
}

func resolveAmount(record RawRecord) decimal.Decimal {
	for _, raw := range []string{record.TotalAmount, record.Amount} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		return parseDecimal(raw)
	}
	return decimal.Zero
}

// parseDecimal parses raw monetary text. Non-numeric or negative values
// normalize to zero rather than failing the record.
func parseDecimal(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func normalizeItems(items []RawItem) []CanonicalLineItem {
	if len(items) == 0 {
		return nil
	}
	normalized := make([]CanonicalLineItem, 0, len(items))
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		normalized = append(normalized, CanonicalLineItem{
			Name:      item.Name,
			Quantity:  quantity,
			UnitPrice: parseDecimal(item.Price),
		})
	}
	return normalized
}
