package ingest

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/enochaseks/lokal-sub003/pkg/logger"
	"github.com/enochaseks/lokal-sub003/pkg/metrics"
)

const (
	ingestConsumerName = "ingest"
	flushTimeout       = 10 * time.Second
)

// Handler applies a decoded sale event to storage.
type Handler interface {
	Apply(ctx context.Context, event *SaleRecordedEvent) error
	Flush(ctx context.Context) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Service consumes sale events from Pub/Sub while honoring Redis idempotency.
type Service struct {
	subscription *gcppubsub.Subscriber
	handler      Handler
	manager      idempotencyChecker
	logg         *logger.Logger
	metrics      *metrics.IngestMetrics
}

// NewService creates the ingest worker service.
func NewService(subscription *gcppubsub.Subscriber, handler Handler, manager idempotencyChecker, logg *logger.Logger, ingestMetrics *metrics.IngestMetrics) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("sales subscription is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	// The writer's buffers are unsynchronized; keep delivery on a single
	// callback at a time.
	subscription.ReceiveSettings.NumGoroutines = 1
	subscription.ReceiveSettings.MaxOutstandingMessages = 1

	return &Service{
		subscription: subscription,
		handler:      handler,
		manager:      manager,
		logg:         logg,
		metrics:      ingestMetrics,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes sale messages until the context is canceled, then flushes any
// buffered records.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if flushErr := s.handler.Flush(flushCtx); flushErr != nil {
		s.logg.Error(flushCtx, "final flush failed", flushErr)
	}
	return err
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	event, err := DecodeEvent(msg.Data, msg.Attributes)
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invalid sale event")
		s.metrics.IncFailure(msg.Attributes[AttrSource])
		return processResult{}
	}
	fields["event_id"] = event.EventID
	fields["source"] = event.Source
	fields["store_id"] = event.StoreID
	logCtx = s.logg.WithFields(ctx, fields)

	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		s.logg.Warn(logCtx, "invalid event id")
		s.metrics.IncFailure(event.Source)
		return processResult{}
	}

	already, err := s.manager.CheckAndMarkProcessed(logCtx, ingestConsumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if err := s.handler.Apply(logCtx, event); err != nil {
		s.logg.Error(logCtx, "apply sale event failed", err)
		s.metrics.IncFailure(event.Source)
		_ = s.manager.Delete(logCtx, ingestConsumerName, eventID)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "sale event ingested")
	return processResult{}
}
