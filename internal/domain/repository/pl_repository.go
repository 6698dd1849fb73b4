package repository

import (
	"context"
	"time"
)

// BillPLRow is one closed bill flattened for profit/loss aggregation.
// Labor and drink figures come from the stored payroll snapshot so the
// P/L never recomputes payouts.
type BillPLRow struct {
	BillID        uint      `json:"bill_id"`
	StoreID       uint      `json:"store_id"`
	ClosedAt      time.Time `json:"closed_at"`
	Subtotal      int64     `json:"subtotal"`
	ServiceCharge int64     `json:"service_charge"`
	Tax           int64     `json:"tax"`
	Discount      int64     `json:"discount"`
	Total         int64     `json:"total"`
	Pax           int       `json:"pax"`
	HasNomination bool      `json:"has_nomination"`
	Snapshot      []byte    `json:"-"`
}

// CostRow is one item master cost aggregate used for gross-margin lines.
type CostRow struct {
	BillID uint  `json:"bill_id"`
	Cost   int64 `json:"cost"`
}

// ItemAggRow is one bill line of a closed bill with its category and
// master identifiers, used for guest counts and drink metrics.
type ItemAggRow struct {
	BillID       uint      `json:"bill_id"`
	ClosedAt     time.Time `json:"closed_at"`
	CategoryCode string    `json:"category_code"`
	MajorGroup   string    `json:"major_group"`
	MasterCode   string    `json:"master_code"`
	Qty          int       `json:"qty"`
	Amount       int64     `json:"amount"`
}

// PLRepository reads closed-bill rows for profit/loss reports. Callers
// bucket by business day themselves since the cutoff hour is per store.
type PLRepository interface {
	ListClosedBillRows(ctx context.Context, storeID uint, from, to time.Time) ([]BillPLRow, error)
	ListBillItemAgg(ctx context.Context, storeID uint, from, to time.Time) ([]ItemAggRow, error)
	ListBillCosts(ctx context.Context, storeID uint, from, to time.Time) ([]CostRow, error)
}
