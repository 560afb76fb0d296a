package records

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/enochaseks/lokal-sub003/internal/repo"
)

// Repository reads and writes the three sale-record collections and store views.
type Repository struct {
	repo.Base
}

// NewRepository constructs a records repository backed by the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListOrders returns a store's orders whose resolved timestamp falls inside the
// window, plus any rows missing a timestamp so callers can count them as skipped.
func (r *Repository) ListOrders(ctx context.Context, storeID string, from, to time.Time) ([]SaleOrder, error) {
	var rows []SaleOrder
	err := r.DB(ctx).
		Where("store_id = ?", storeID).
		Where("(created_at >= ? AND created_at <= ?) OR created_at IS NULL", from, to).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListReports returns a store's reports for the window. The resolved timestamp
// prefers completed_at and falls back to created_at.
func (r *Repository) ListReports(ctx context.Context, storeID string, from, to time.Time) ([]SalesReport, error) {
	var rows []SalesReport
	err := r.DB(ctx).
		Where("store_id = ?", storeID).
		Where("(COALESCE(completed_at, created_at) >= ? AND COALESCE(completed_at, created_at) <= ?) OR (completed_at IS NULL AND created_at IS NULL)", from, to).
		Order("COALESCE(completed_at, created_at) ASC").
		Find(&rows).Error
	return rows, err
}

// ListTransactions returns a store's collected transactions for the window. The
// resolved timestamp prefers collected_at and falls back to created_at.
func (r *Repository) ListTransactions(ctx context.Context, storeID string, from, to time.Time) ([]CollectedTransaction, error) {
	var rows []CollectedTransaction
	err := r.DB(ctx).
		Where("store_id = ?", storeID).
		Where("(COALESCE(collected_at, created_at) >= ? AND COALESCE(collected_at, created_at) <= ?) OR (collected_at IS NULL AND created_at IS NULL)", from, to).
		Order("COALESCE(collected_at, created_at) ASC").
		Find(&rows).Error
	return rows, err
}

// CountViews returns the number of storefront views recorded for the window.
func (r *Repository) CountViews(ctx context.Context, storeID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&StoreView{}).
		Where("store_id = ? AND viewed_at >= ? AND viewed_at <= ?", storeID, from, to).
		Count(&count).Error
	return count, err
}

// InsertOrders writes a batch of orders, skipping rows already ingested.
func (r *Repository) InsertOrders(ctx context.Context, rows []SaleOrder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// InsertReports writes a batch of reports, skipping rows already ingested.
func (r *Repository) InsertReports(ctx context.Context, rows []SalesReport) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// InsertTransactions writes a batch of transactions, skipping rows already ingested.
func (r *Repository) InsertTransactions(ctx context.Context, rows []CollectedTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// InsertViews writes a batch of storefront views.
func (r *Repository) InsertViews(ctx context.Context, rows []StoreView) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&rows).Error
}
