package records

import (
	"github.com/enochaseks/lokal-sub003/internal/reconcile"
	dbtypes "github.com/enochaseks/lokal-sub003/pkg/db/types"
	"github.com/enochaseks/lokal-sub003/pkg/enums"
)

// ToRawRecord maps a stored order into the reconciliation input shape.
func (o SaleOrder) ToRawRecord() reconcile.RawRecord {
	return reconcile.RawRecord{
		Source:      enums.SourceKindOrder,
		ID:          o.ID,
		OrderRef:    deref(o.OrderRef),
		BuyerID:     deref(o.BuyerID),
		BuyerName:   deref(o.BuyerName),
		TotalAmount: deref(o.TotalAmount),
		CreatedAt:   o.CreatedAt,
		Items:       rawItems(o.Items),
	}
}

// ToRawRecord maps a stored report into the reconciliation input shape.
func (r SalesReport) ToRawRecord() reconcile.RawRecord {
	return reconcile.RawRecord{
		Source:      enums.SourceKindReport,
		ID:          r.ID,
		OrderRef:    deref(r.OrderRef),
		CustomerID:  deref(r.CustomerID),
		BuyerName:   deref(r.CustomerName),
		Amount:      deref(r.Amount),
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
		Items:       rawItems(r.Items),
	}
}

// ToRawRecord maps a stored transaction into the reconciliation input shape.
func (t CollectedTransaction) ToRawRecord() reconcile.RawRecord {
	return reconcile.RawRecord{
		Source:      enums.SourceKindTransaction,
		ID:          t.ID,
		OrderRef:    deref(t.OrderRef),
		CustomerID:  deref(t.CustomerID),
		BuyerName:   deref(t.CustomerName),
		Amount:      deref(t.Amount),
		CollectedAt: t.CollectedAt,
		CreatedAt:   t.CreatedAt,
		Items:       rawItems(t.Items),
	}
}

func rawItems(items dbtypes.SaleItemList) []reconcile.RawItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]reconcile.RawItem, 0, len(items))
	for _, item := range items {
		out = append(out, reconcile.RawItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return out
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
