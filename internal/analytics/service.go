// Package analytics serves reconciled sale analytics for a single store,
// merging the order, report, and transaction collections on demand.
package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/enochaseks/lokal-sub003/internal/reconcile"
	"github.com/enochaseks/lokal-sub003/internal/records"
	"github.com/enochaseks/lokal-sub003/pkg/enums"
	pkgerrors "github.com/enochaseks/lokal-sub003/pkg/errors"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
	"github.com/enochaseks/lokal-sub003/pkg/metrics"
	"github.com/enochaseks/lokal-sub003/pkg/pagination"
)

// Service provides reconciled analytics snapshots and order listings.
type Service interface {
	// Snapshot builds (or serves from cache) the analytics snapshot for a window.
	Snapshot(ctx context.Context, req SnapshotRequest) (*SnapshotResponse, error)
	// Orders returns one page of the deduplicated order set behind a snapshot.
	Orders(ctx context.Context, req OrdersRequest) (*OrdersResponse, error)
}

// RecordSource is the read surface the service needs from the records layer.
type RecordSource interface {
	ListOrders(ctx context.Context, storeID string, from, to time.Time) ([]records.SaleOrder, error)
	ListReports(ctx context.Context, storeID string, from, to time.Time) ([]records.SalesReport, error)
	ListTransactions(ctx context.Context, storeID string, from, to time.Time) ([]records.CollectedTransaction, error)
	CountViews(ctx context.Context, storeID string, from, to time.Time) (int64, error)
}

type snapshotCache interface {
	Get(ctx context.Context, storeID string, window Window) (*SnapshotResponse, bool, error)
	Set(ctx context.Context, resp *SnapshotResponse) error
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Source   RecordSource
	Cache    snapshotCache
	Logger   *logger.Logger
	Metrics  *metrics.ReconcileMetrics
	Currency enums.Currency
}

type service struct {
	source   RecordSource
	cache    snapshotCache
	logg     *logger.Logger
	metrics  *metrics.ReconcileMetrics
	currency enums.Currency

	now func() time.Time
}

// NewService builds the analytics service. Cache and metrics are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, errors.New("record source is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	currency := params.Currency
	if !currency.IsValid() {
		currency = enums.CurrencyGBP
	}
	return &service{
		source:   params.Source,
		cache:    params.Cache,
		logg:     params.Logger,
		metrics:  params.Metrics,
		currency: currency,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Snapshot(ctx context.Context, req SnapshotRequest) (*SnapshotResponse, error) {
	if err := validateWindow(req.StoreID, req.Start, req.End); err != nil {
		return nil, err
	}

	window := Window{From: req.Start.UTC(), To: req.End.UTC()}
	ctx = s.logg.WithStoreID(ctx, req.StoreID)
	started := s.now()

	if s.cache != nil && !req.Refresh {
		cached, hit, err := s.cache.Get(ctx, req.StoreID, window)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "snapshot cache unavailable")
		}
		if hit {
			s.metrics.IncCacheHit()
			s.metrics.ObserveBuild("hit", s.now().Sub(started))
			return cached, nil
		}
	}

	result, err := s.reconcileWindow(ctx, req.StoreID, window)
	if err != nil {
		return nil, err
	}

	resp := &SnapshotResponse{
		StoreID:        req.StoreID,
		Currency:       s.currency,
		Window:         window,
		GeneratedAt:    s.now(),
		SkippedRecords: len(result.Skipped),
		Snapshot:       result.Snapshot,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, resp); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "snapshot cache write failed")
		}
	}

	s.metrics.IncCacheMiss()
	s.metrics.ObserveBuild("miss", s.now().Sub(started))
	return resp, nil
}

func (s *service) Orders(ctx context.Context, req OrdersRequest) (*OrdersResponse, error) {
	if err := validateWindow(req.StoreID, req.Start, req.End); err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(req.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	window := Window{From: req.Start.UTC(), To: req.End.UTC()}
	ctx = s.logg.WithStoreID(ctx, req.StoreID)

	result, err := s.reconcileWindow(ctx, req.StoreID, window)
	if err != nil {
		return nil, err
	}

	orders := result.Orders
	if cursor != nil {
		orders = ordersAfter(orders, *cursor)
	}

	limit := pagination.NormalizeLimit(req.Limit)
	next := ""
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next = pagination.EncodeCursor(pagination.Cursor{
			OccurredAt: last.OccurredAt,
			Key:        last.IdentityKey,
		})
	}

	return &OrdersResponse{
		StoreID:    req.StoreID,
		Window:     window,
		Orders:     orders,
		NextCursor: next,
	}, nil
}

func (s *service) reconcileWindow(ctx context.Context, storeID string, window Window) (*reconcile.Result, error) {
	var (
		orders       []records.SaleOrder
		reports      []records.SalesReport
		transactions []records.CollectedTransaction
		views        int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		orders, err = s.source.ListOrders(groupCtx, storeID, window.From, window.To)
		return err
	})
	group.Go(func() error {
		var err error
		reports, err = s.source.ListReports(groupCtx, storeID, window.From, window.To)
		return err
	})
	group.Go(func() error {
		var err error
		transactions, err = s.source.ListTransactions(groupCtx, storeID, window.From, window.To)
		return err
	})
	group.Go(func() error {
		var err error
		views, err = s.source.CountViews(groupCtx, storeID, window.From, window.To)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading sale records")
	}

	input := reconcile.Input{Views: views}
	for _, row := range orders {
		input.Orders = append(input.Orders, row.ToRawRecord())
	}
	for _, row := range reports {
		input.Reports = append(input.Reports, row.ToRawRecord())
	}
	for _, row := range transactions {
		input.Transactions = append(input.Transactions, row.ToRawRecord())
	}

	result := reconcile.Reconcile(input)

	for _, skipped := range result.Skipped {
		s.metrics.IncSkipped(skipped.Source.String(), string(skipped.Reason))
	}
	if len(result.Skipped) > 0 {
		skipCtx := s.logg.WithField(ctx, "skipped_records", len(result.Skipped))
		s.logg.Warn(skipCtx, "sale records dropped during normalization")
	}

	perSource := map[enums.SourceKind]int{}
	for _, order := range result.Orders {
		perSource[order.Source]++
	}
	for source, count := range perSource {
		s.metrics.AddOrders(source.String(), count)
	}

	return &result, nil
}

func ordersAfter(orders []reconcile.CanonicalOrder, cursor pagination.Cursor) []reconcile.CanonicalOrder {
	for i, order := range orders {
		if order.OccurredAt.After(cursor.OccurredAt) {
			return orders[i:]
		}
		if order.OccurredAt.Equal(cursor.OccurredAt) && order.IdentityKey > cursor.Key {
			return orders[i:]
		}
	}
	return nil
}

func validateWindow(storeID string, start, end time.Time) error {
	if strings.TrimSpace(storeID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if start.IsZero() || end.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "window is required")
	}
	if end.Before(start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return nil
}
