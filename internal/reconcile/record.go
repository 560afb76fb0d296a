package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

// UnknownCustomerName is used when a record carries no buyer display name.
const UnknownCustomerName = "Unknown Customer"

// RawRecord is an unprocessed sale record from one of the three source
// collections. The collections disagree on field names and timestamp
// placement; only the fields the originating collection populates are set.
type RawRecord struct {
	Source      enums.SourceKind
	ID          string
	OrderRef    string
	BuyerID     string
	CustomerID  string
	BuyerName   string
	TotalAmount string
	Amount      string
	CreatedAt   *time.Time
	CompletedAt *time.Time
	CollectedAt *time.Time
	Items       []RawItem
}

// RawItem is a line item as received from an upstream collection. Price is
// kept as raw text because sources disagree on numeric encoding.
type RawItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// CanonicalOrder is the normalized, source-agnostic representation of one
// sale. IdentityKey is the deduplication key and is stable across the three
// source collections for what is logically the same sale.
type CanonicalOrder struct {
	IdentityKey  string              `json:"identity_key"`
	Source       enums.SourceKind    `json:"source"`
	CustomerID   string              `json:"customer_id,omitempty"`
	CustomerName string              `json:"customer_name"`
	OccurredAt   time.Time           `json:"occurred_at"`
	Amount       decimal.Decimal     `json:"amount"`
	LineItems    []CanonicalLineItem `json:"line_items,omitempty"`
}

// CanonicalLineItem is a normalized line item with quantity >= 1 and a
// non-negative unit price.
type CanonicalLineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// identityKey derives the deduplication key for a raw record: the externally
// visible order reference when present, the source-local id otherwise.
func (r RawRecord) identityKey() string {
	if r.OrderRef != "" {
		return r.OrderRef
	}
	return r.ID
}
