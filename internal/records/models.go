package records

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/enochaseks/lokal-sub003/pkg/db/types"
)

// SaleOrder is a sale as recorded by the storefront order flow.
// Upstream identifiers and amounts arrive as text and are kept verbatim;
// the reconciliation pipeline owns parsing and fallbacks.
type SaleOrder struct {
	ID          string               `gorm:"column:id;primaryKey"`
	StoreID     string               `gorm:"column:store_id;not null"`
	OrderRef    *string              `gorm:"column:order_ref"`
	BuyerID     *string              `gorm:"column:buyer_id"`
	BuyerName   *string              `gorm:"column:buyer_name"`
	TotalAmount *string              `gorm:"column:total_amount"`
	Items       dbtypes.SaleItemList `gorm:"column:items;type:jsonb"`
	CreatedAt   *time.Time           `gorm:"column:created_at;autoCreateTime:false"`
	IngestedAt  time.Time            `gorm:"column:ingested_at;autoCreateTime"`
}

func (SaleOrder) TableName() string { return "sale_orders" }

// SalesReport is a sale as recorded by the seller-facing reporting flow.
type SalesReport struct {
	ID           string               `gorm:"column:id;primaryKey"`
	StoreID      string               `gorm:"column:store_id;not null"`
	OrderRef     *string              `gorm:"column:order_ref"`
	CustomerID   *string              `gorm:"column:customer_id"`
	CustomerName *string              `gorm:"column:customer_name"`
	Amount       *string              `gorm:"column:amount"`
	Items        dbtypes.SaleItemList `gorm:"column:items;type:jsonb"`
	CompletedAt  *time.Time           `gorm:"column:completed_at"`
	CreatedAt    *time.Time           `gorm:"column:created_at;autoCreateTime:false"`
	IngestedAt   time.Time            `gorm:"column:ingested_at;autoCreateTime"`
}

func (SalesReport) TableName() string { return "sales_reports" }

// CollectedTransaction is a sale as recorded by the payment collection flow.
type CollectedTransaction struct {
	ID           string               `gorm:"column:id;primaryKey"`
	StoreID      string               `gorm:"column:store_id;not null"`
	OrderRef     *string              `gorm:"column:order_ref"`
	CustomerID   *string              `gorm:"column:customer_id"`
	CustomerName *string              `gorm:"column:customer_name"`
	Amount       *string              `gorm:"column:amount"`
	Items        dbtypes.SaleItemList `gorm:"column:items;type:jsonb"`
	CollectedAt  *time.Time           `gorm:"column:collected_at"`
	CreatedAt    *time.Time           `gorm:"column:created_at;autoCreateTime:false"`
	IngestedAt   time.Time            `gorm:"column:ingested_at;autoCreateTime"`
}

func (CollectedTransaction) TableName() string { return "collected_transactions" }

// StoreView is one recorded storefront page view.
type StoreView struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   string    `gorm:"column:store_id;not null"`
	ViewedAt  time.Time `gorm:"column:viewed_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (StoreView) TableName() string { return "store_views" }
