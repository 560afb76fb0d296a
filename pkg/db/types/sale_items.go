package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaleItem is one line item as it arrives from an upstream sale source.
// Price stays textual so malformed upstream values survive the round trip.
type SaleItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// SaleItemList stores line items as a JSON column.
type SaleItemList []SaleItem

func (l *SaleItemList) Scan(src any) error {
	if src == nil {
		*l = SaleItemList{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return l.parseFromBytes([]byte(v))
	case []byte:
		return l.parseFromBytes(v)
	default:
		return fmt.Errorf("SaleItemList: unsupported Scan type %T", src)
	}
}

func (l SaleItemList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("SaleItemList: marshal: %w", err)
	}
	return string(encoded), nil
}

func (l *SaleItemList) parseFromBytes(b []byte) error {
	if len(b) == 0 {
		*l = SaleItemList{}
		return nil
	}
	var out []SaleItem
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("SaleItemList: unmarshal: %w", err)
	}
	if out == nil {
		out = []SaleItem{}
	}
	*l = SaleItemList(out)
	return nil
}
