package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/enochaseks/lokal-sub003/internal/records"
	"github.com/enochaseks/lokal-sub003/pkg/enums"
	"github.com/enochaseks/lokal-sub003/pkg/metrics"
)

const (
	defaultBatchSize      = 1
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// WriterConfig controls batching and retry behavior of the record writer.
type WriterConfig struct {
	BatchSize   int
	RetryPolicy RetryPolicy
}

// RetryPolicy controls how database insert failures are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type recordInserter interface {
	InsertOrders(ctx context.Context, rows []records.SaleOrder) error
	InsertReports(ctx context.Context, rows []records.SalesReport) error
	InsertTransactions(ctx context.Context, rows []records.CollectedTransaction) error
	InsertViews(ctx context.Context, rows []records.StoreView) error
}

// Writer buffers decoded sale records and flushes them to the database in
// batches with retries. It is not safe for concurrent use; the worker calls
// it from a single goroutine.
type Writer struct {
	repo      recordInserter
	batchSize int
	retry     RetryPolicy
	metrics   *metrics.IngestMetrics

	orderBuffer       []records.SaleOrder
	reportBuffer      []records.SalesReport
	transactionBuffer []records.CollectedTransaction
	viewBuffer        []records.StoreView
}

// NewWriter creates a record writer backed by the records repository.
func NewWriter(repo recordInserter, cfg WriterConfig, ingestMetrics *metrics.IngestMetrics) (*Writer, error) {
	if repo == nil {
		return nil, errors.New("records repository is required")
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &Writer{
		repo:      repo,
		batchSize: batchSize,
		retry:     retry,
		metrics:   ingestMetrics,
	}, nil
}

// Apply decodes the event's record payload and buffers it for its collection,
// flushing that collection when the batch size is reached.
func (w *Writer) Apply(ctx context.Context, event *SaleRecordedEvent) error {
	if event == nil {
		return errors.New("event is required")
	}

	switch event.Source {
	case string(enums.SourceKindOrder):
		payload, err := decodeRecord[OrderPayload](event)
		if err != nil {
			return err
		}
		w.orderBuffer = append(w.orderBuffer, payload.toModel(event.StoreID))
		if len(w.orderBuffer) >= w.batchSize {
			return w.flushOrders(ctx)
		}
	case string(enums.SourceKindReport):
		payload, err := decodeRecord[ReportPayload](event)
		if err != nil {
			return err
		}
		w.reportBuffer = append(w.reportBuffer, payload.toModel(event.StoreID))
		if len(w.reportBuffer) >= w.batchSize {
			return w.flushReports(ctx)
		}
	case string(enums.SourceKindTransaction):
		payload, err := decodeRecord[TransactionPayload](event)
		if err != nil {
			return err
		}
		w.transactionBuffer = append(w.transactionBuffer, payload.toModel(event.StoreID))
		if len(w.transactionBuffer) >= w.batchSize {
			return w.flushTransactions(ctx)
		}
	case SourceView:
		payload, err := decodeRecord[ViewPayload](event)
		if err != nil {
			return err
		}
		w.viewBuffer = append(w.viewBuffer, payload.toModel(event.StoreID))
		if len(w.viewBuffer) >= w.batchSize {
			return w.flushViews(ctx)
		}
	default:
		return fmt.Errorf("unsupported source %q", event.Source)
	}
	return nil
}

// Flush writes all buffered records immediately.
func (w *Writer) Flush(ctx context.Context) error {
	return multierr.Combine(
		w.flushOrders(ctx),
		w.flushReports(ctx),
		w.flushTransactions(ctx),
		w.flushViews(ctx),
	)
}

func (w *Writer) flushOrders(ctx context.Context) error {
	if len(w.orderBuffer) == 0 {
		return nil
	}
	count := len(w.orderBuffer)
	err := w.insertWithRetry(ctx, func() error {
		return w.repo.InsertOrders(ctx, w.orderBuffer)
	})
	if err != nil {
		return fmt.Errorf("flush orders: %w", err)
	}
	w.orderBuffer = w.orderBuffer[:0]
	w.recordFlush(enums.SourceKindOrder.String(), count)
	return nil
}

func (w *Writer) flushReports(ctx context.Context) error {
	if len(w.reportBuffer) == 0 {
		return nil
	}
	count := len(w.reportBuffer)
	err := w.insertWithRetry(ctx, func() error {
		return w.repo.InsertReports(ctx, w.reportBuffer)
	})
	if err != nil {
		return fmt.Errorf("flush reports: %w", err)
	}
	w.reportBuffer = w.reportBuffer[:0]
	w.recordFlush(enums.SourceKindReport.String(), count)
	return nil
}

func (w *Writer) flushTransactions(ctx context.Context) error {
	if len(w.transactionBuffer) == 0 {
		return nil
	}
	count := len(w.transactionBuffer)
	err := w.insertWithRetry(ctx, func() error {
		return w.repo.InsertTransactions(ctx, w.transactionBuffer)
	})
	if err != nil {
		return fmt.Errorf("flush transactions: %w", err)
	}
	w.transactionBuffer = w.transactionBuffer[:0]
	w.recordFlush(enums.SourceKindTransaction.String(), count)
	return nil
}

func (w *Writer) flushViews(ctx context.Context) error {
	if len(w.viewBuffer) == 0 {
		return nil
	}
	count := len(w.viewBuffer)
	err := w.insertWithRetry(ctx, func() error {
		return w.repo.InsertViews(ctx, w.viewBuffer)
	})
	if err != nil {
		return fmt.Errorf("flush views: %w", err)
	}
	w.viewBuffer = w.viewBuffer[:0]
	w.recordFlush(SourceView, count)
	return nil
}

func (w *Writer) recordFlush(source string, count int) {
	w.metrics.IncFlush()
	for i := 0; i < count; i++ {
		w.metrics.IncIngested(source)
	}
}

func (w *Writer) insertWithRetry(ctx context.Context, insert func() error) error {
	attempts := 0
	backoff := w.retry.InitialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := insert()
		if err == nil {
			return nil
		}

		attempts++
		if attempts >= w.retry.MaxAttempts {
			return err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		timer.Stop()

		backoff = minDuration(backoff*2, w.retry.MaximumBackoff)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
