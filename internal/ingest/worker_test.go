package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/enochaseks/lokal-sub003/pkg/logger"
)

type stubHandler struct {
	applied []*SaleRecordedEvent
	err     error
	flushed int
}

func (s *stubHandler) Apply(ctx context.Context, event *SaleRecordedEvent) error {
	s.applied = append(s.applied, event)
	return s.err
}

func (s *stubHandler) Flush(ctx context.Context) error {
	s.flushed++
	return nil
}

type stubManager struct {
	checkResult bool
	checkErr    error
	checked     []uuid.UUID
	deleted     []uuid.UUID
}

func (s *stubManager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	s.checked = append(s.checked, eventID)
	return s.checkResult, s.checkErr
}

func (s *stubManager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	return nil
}

func newTestWorker(t *testing.T, handler Handler, manager idempotencyChecker) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "ingest-test", Output: io.Discard})
	svc, err := NewService(&gcppubsub.Subscriber{}, handler, manager, logg, nil)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return svc
}

func buildSaleMessage(t *testing.T, source string, record any) *gcppubsub.Message {
	t.Helper()
	rawRecord, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	data, err := json.Marshal(SaleRecordedEvent{
		EventID: uuid.NewString(),
		StoreID: "s1",
		Source:  source,
		Record:  rawRecord,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: map[string]string{AttrSource: source},
	}
}

func TestNewServiceSerializesDelivery(t *testing.T) {
	subscription := &gcppubsub.Subscriber{}
	logg := logger.New(logger.Options{ServiceName: "ingest-test", Output: io.Discard})
	if _, err := NewService(subscription, &stubHandler{}, &stubManager{}, logg, nil); err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	if subscription.ReceiveSettings.NumGoroutines != 1 {
		t.Fatalf("expected one receive goroutine, got %d", subscription.ReceiveSettings.NumGoroutines)
	}
	if subscription.ReceiveSettings.MaxOutstandingMessages != 1 {
		t.Fatalf("expected one outstanding message, got %d", subscription.ReceiveSettings.MaxOutstandingMessages)
	}
}

func TestProcessAppliesEvent(t *testing.T) {
	handler := &stubHandler{}
	manager := &stubManager{}
	svc := newTestWorker(t, handler, manager)

	msg := buildSaleMessage(t, "order", OrderPayload{ID: "o-1", TotalAmount: "10.00", CreatedAt: tPtrIngest(time.Now().UTC())})
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatal("expected ack on success")
	}
	if len(handler.applied) != 1 {
		t.Fatalf("expected handler invoked once, got %d", len(handler.applied))
	}
	if handler.applied[0].Source != "order" {
		t.Fatalf("unexpected source %s", handler.applied[0].Source)
	}
	if len(manager.checked) != 1 {
		t.Fatalf("expected idempotency check, got %d", len(manager.checked))
	}
}

func TestProcessAlreadyProcessed(t *testing.T) {
	handler := &stubHandler{}
	manager := &stubManager{checkResult: true}
	svc := newTestWorker(t, handler, manager)

	msg := buildSaleMessage(t, "order", OrderPayload{ID: "o-1"})
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatal("expected ack when already processed")
	}
	if len(handler.applied) != 0 {
		t.Fatal("handler should not run for a processed event")
	}
}

func TestProcessHandlerErrorNacksAndReleases(t *testing.T) {
	handler := &stubHandler{err: errors.New("insert failed")}
	manager := &stubManager{}
	svc := newTestWorker(t, handler, manager)

	msg := buildSaleMessage(t, "order", OrderPayload{ID: "o-1"})
	res := svc.process(context.Background(), msg)
	if !res.nack {
		t.Fatal("expected nack on handler error")
	}
	if len(manager.deleted) != 1 {
		t.Fatal("expected idempotency key released on failure")
	}
}

func TestProcessIdempotencyErrorNacks(t *testing.T) {
	handler := &stubHandler{}
	manager := &stubManager{checkErr: errors.New("redis down")}
	svc := newTestWorker(t, handler, manager)

	msg := buildSaleMessage(t, "order", OrderPayload{ID: "o-1"})
	res := svc.process(context.Background(), msg)
	if !res.nack {
		t.Fatal("expected nack when idempotency store fails")
	}
	if len(handler.applied) != 0 {
		t.Fatal("handler should not run without an idempotency mark")
	}
}

func TestProcessInvalidEventAcks(t *testing.T) {
	handler := &stubHandler{}
	manager := &stubManager{}
	svc := newTestWorker(t, handler, manager)

	msg := &gcppubsub.Message{ID: "msg-1", Data: []byte("not json")}
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatal("malformed event must ack, redelivery cannot fix it")
	}
	if len(handler.applied) != 0 {
		t.Fatal("handler should not run for a malformed event")
	}
	if len(manager.checked) != 0 {
		t.Fatal("idempotency manager should not be touched")
	}
}

func tPtrIngest(v time.Time) *time.Time { return &v }
