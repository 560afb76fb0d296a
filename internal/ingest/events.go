// Package ingest consumes sale-record events from Pub/Sub and persists them
// into the three source collections the reconciliation pipeline reads from.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/enochaseks/lokal-sub003/internal/records"
	dbtypes "github.com/enochaseks/lokal-sub003/pkg/db/types"
	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

// Message attribute keys on the sales topic.
const (
	AttrSource  = "source"
	AttrEventID = "event_id"
)

// SourceView marks storefront view events on the sales topic. Views are not a
// sale collection, so the value lives here rather than in enums.SourceKind.
const SourceView = "view"

var validate = validator.New()

// SaleRecordedEvent is the wire envelope for every message on the sales topic.
// Record holds the source-specific payload and is decoded after routing on
// Source.
type SaleRecordedEvent struct {
	EventID string          `json:"event_id" validate:"required,uuid"`
	StoreID string          `json:"store_id" validate:"required"`
	Source  string          `json:"source" validate:"required"`
	Record  json.RawMessage `json:"record" validate:"required"`
}

// ItemPayload is one line item as published by an upstream storefront.
type ItemPayload struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// OrderPayload is a sale published by the storefront order flow.
type OrderPayload struct {
	ID          string        `json:"id" validate:"required"`
	OrderRef    string        `json:"order_ref"`
	BuyerID     string        `json:"buyer_id"`
	BuyerName   string        `json:"buyer_name"`
	TotalAmount string        `json:"total_amount"`
	Items       []ItemPayload `json:"items"`
	CreatedAt   *time.Time    `json:"created_at"`
}

// ReportPayload is a sale published by the seller-facing reporting flow.
type ReportPayload struct {
	ID           string        `json:"id" validate:"required"`
	OrderRef     string        `json:"order_ref"`
	CustomerID   string        `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	Amount       string        `json:"amount"`
	Items        []ItemPayload `json:"items"`
	CompletedAt  *time.Time    `json:"completed_at"`
	CreatedAt    *time.Time    `json:"created_at"`
}

// TransactionPayload is a sale published by the payment collection flow.
type TransactionPayload struct {
	ID           string        `json:"id" validate:"required"`
	OrderRef     string        `json:"order_ref"`
	CustomerID   string        `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	Amount       string        `json:"amount"`
	Items        []ItemPayload `json:"items"`
	CollectedAt  *time.Time    `json:"collected_at"`
	CreatedAt    *time.Time    `json:"created_at"`
}

// ViewPayload is one storefront page view.
type ViewPayload struct {
	ViewedAt time.Time `json:"viewed_at" validate:"required"`
}

// DecodeEvent parses and validates the envelope from raw message data.
// Message attributes fill in the event id and source when the body omits them.
func DecodeEvent(data []byte, attributes map[string]string) (*SaleRecordedEvent, error) {
	var event SaleRecordedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode sale event: %w", err)
	}
	if event.EventID == "" {
		event.EventID = strings.TrimSpace(attributes[AttrEventID])
	}
	if event.Source == "" {
		event.Source = strings.TrimSpace(attributes[AttrSource])
	}
	if err := validate.Struct(&event); err != nil {
		return nil, fmt.Errorf("validate sale event: %w", err)
	}
	if event.Source != SourceView {
		if _, err := enums.ParseSourceKind(event.Source); err != nil {
			return nil, err
		}
	}
	return &event, nil
}

func decodeRecord[T any](event *SaleRecordedEvent) (*T, error) {
	var payload T
	if err := json.Unmarshal(event.Record, &payload); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", event.Source, err)
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, fmt.Errorf("validate %s record: %w", event.Source, err)
	}
	return &payload, nil
}

func (p OrderPayload) toModel(storeID string) records.SaleOrder {
	return records.SaleOrder{
		ID:          p.ID,
		StoreID:     storeID,
		OrderRef:    optional(p.OrderRef),
		BuyerID:     optional(p.BuyerID),
		BuyerName:   optional(p.BuyerName),
		TotalAmount: optional(p.TotalAmount),
		Items:       toItemList(p.Items),
		CreatedAt:   p.CreatedAt,
	}
}

func (p ReportPayload) toModel(storeID string) records.SalesReport {
	return records.SalesReport{
		ID:           p.ID,
		StoreID:      storeID,
		OrderRef:     optional(p.OrderRef),
		CustomerID:   optional(p.CustomerID),
		CustomerName: optional(p.CustomerName),
		Amount:       optional(p.Amount),
		Items:        toItemList(p.Items),
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func (p TransactionPayload) toModel(storeID string) records.CollectedTransaction {
	return records.CollectedTransaction{
		ID:           p.ID,
		StoreID:      storeID,
		OrderRef:     optional(p.OrderRef),
		CustomerID:   optional(p.CustomerID),
		CustomerName: optional(p.CustomerName),
		Amount:       optional(p.Amount),
		Items:        toItemList(p.Items),
		CollectedAt:  p.CollectedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func (p ViewPayload) toModel(storeID string) records.StoreView {
	return records.StoreView{
		ID:       uuid.New(),
		StoreID:  storeID,
		ViewedAt: p.ViewedAt.UTC(),
	}
}

func toItemList(items []ItemPayload) dbtypes.SaleItemList {
	if len(items) == 0 {
		return dbtypes.SaleItemList{}
	}
	out := make(dbtypes.SaleItemList, 0, len(items))
	for _, item := range items {
		out = append(out, dbtypes.SaleItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return out
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
