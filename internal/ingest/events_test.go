package ingest

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeEventFillsFromAttributes(t *testing.T) {
	data := []byte(`{"store_id":"s1","record":{"id":"o-1"}}`)
	attributes := map[string]string{
		AttrEventID: "5a0b9f3e-8f5b-4a63-9a3e-0d1c2b3a4f5e",
		AttrSource:  "order",
	}

	event, err := DecodeEvent(data, attributes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.EventID != attributes[AttrEventID] {
		t.Fatalf("expected event id from attributes, got %s", event.EventID)
	}
	if event.Source != "order" {
		t.Fatalf("expected source from attributes, got %s", event.Source)
	}
}

func TestDecodeEventRejectsUnknownSource(t *testing.T) {
	data := []byte(`{"event_id":"5a0b9f3e-8f5b-4a63-9a3e-0d1c2b3a4f5e","store_id":"s1","source":"webhook","record":{}}`)
	if _, err := DecodeEvent(data, nil); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestDecodeEventRejectsMissingStore(t *testing.T) {
	data := []byte(`{"event_id":"5a0b9f3e-8f5b-4a63-9a3e-0d1c2b3a4f5e","source":"order","record":{}}`)
	if _, err := DecodeEvent(data, nil); err == nil {
		t.Fatal("expected error for missing store id")
	}
}

func TestDecodeEventAllowsViewSource(t *testing.T) {
	data := []byte(`{"event_id":"5a0b9f3e-8f5b-4a63-9a3e-0d1c2b3a4f5e","store_id":"s1","source":"view","record":{"viewed_at":"2026-07-01T10:00:00Z"}}`)
	event, err := DecodeEvent(data, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Source != SourceView {
		t.Fatalf("unexpected source %s", event.Source)
	}
}

func TestOrderPayloadToModel(t *testing.T) {
	created := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	payload := OrderPayload{
		ID:          "o-1",
		OrderRef:    "ref-1",
		BuyerName:   "Ama",
		TotalAmount: "12.50",
		Items:       []ItemPayload{{Name: "Widget", Quantity: 2, Price: "6.25"}},
		CreatedAt:   &created,
	}

	model := payload.toModel("s1")
	if model.StoreID != "s1" || model.ID != "o-1" {
		t.Fatalf("unexpected model identity: %+v", model)
	}
	if model.OrderRef == nil || *model.OrderRef != "ref-1" {
		t.Fatal("expected order ref carried over")
	}
	if model.BuyerID != nil {
		t.Fatal("expected empty buyer id to stay nil")
	}
	if len(model.Items) != 1 || model.Items[0].Price != "6.25" {
		t.Fatalf("unexpected items: %+v", model.Items)
	}
}

func TestTransactionPayloadToModelCarriesItems(t *testing.T) {
	collected := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	payload := TransactionPayload{
		ID:           "t-1",
		CustomerID:   "c-1",
		CustomerName: "Kofi",
		Amount:       "15.00",
		Items:        []ItemPayload{{Name: "Waakye Bowl", Quantity: 3, Price: "5.00"}},
		CollectedAt:  &collected,
	}

	model := payload.toModel("s1")
	if model.StoreID != "s1" || model.ID != "t-1" {
		t.Fatalf("unexpected model identity: %+v", model)
	}
	if len(model.Items) != 1 || model.Items[0].Name != "Waakye Bowl" {
		t.Fatalf("unexpected items: %+v", model.Items)
	}
	if model.CollectedAt == nil || !model.CollectedAt.Equal(collected) {
		t.Fatalf("unexpected collected at: %v", model.CollectedAt)
	}
}

func TestViewPayloadToModelAssignsID(t *testing.T) {
	payload := ViewPayload{ViewedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)}
	model := payload.toModel("s1")
	if model.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected a generated view id")
	}
	if !model.ViewedAt.Equal(payload.ViewedAt) {
		t.Fatalf("unexpected viewed at %v", model.ViewedAt)
	}
}

func TestDecodeRecordValidates(t *testing.T) {
	event := &SaleRecordedEvent{
		EventID: "5a0b9f3e-8f5b-4a63-9a3e-0d1c2b3a4f5e",
		StoreID: "s1",
		Source:  "order",
		Record:  json.RawMessage(`{"order_ref":"ref-1"}`),
	}
	if _, err := decodeRecord[OrderPayload](event); err == nil {
		t.Fatal("expected error for record missing id")
	}
}
