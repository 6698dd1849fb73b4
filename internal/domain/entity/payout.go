package entity

import (
	"time"
)

// CastPayout is an immutable attribution row written at bill close.
// Rows are deleted and rewritten as a whole set when a bill is closed;
// they are never edited individually.
type CastPayout struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	BillID     uint  `gorm:"not null;index" json:"bill_id"`
	BillItemID *uint `gorm:"index" json:"bill_item_id,omitempty"`
	CastID     uint  `gorm:"not null;index" json:"cast_id"`
	Amount     int64 `gorm:"not null" json:"amount"`

	// Kind distinguishes the three payout streams: item_back,
	// nomination_pool, dohan_pool.
	Kind string `gorm:"size:20;not null" json:"kind"`

	CreatedAt time.Time `json:"created_at"`

	Cast Cast `gorm:"foreignKey:CastID" json:"-"`
}

// TableName returns the table name for the CastPayout model
func (CastPayout) TableName() string {
	return "cast_payouts"
}

// CastDailySummary rolls one cast's work day into minutes, hourly pay
// and per-stay-type sales. Recomputed on clock-out and on demand.
type CastDailySummary struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	StoreID  uint      `gorm:"not null;uniqueIndex:idx_cast_daily" json:"store_id"`
	CastID   uint      `gorm:"not null;uniqueIndex:idx_cast_daily" json:"cast_id"`
	WorkDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_cast_daily" json:"work_date"`

	WorkedMin int   `gorm:"default:0" json:"worked_min"`
	Payroll   int64 `gorm:"default:0" json:"payroll"`

	FreeSales       int64 `gorm:"default:0" json:"free_sales"`
	NominationSales int64 `gorm:"default:0" json:"nomination_sales"`
	InhouseSales    int64 `gorm:"default:0" json:"inhouse_sales"`
	DohanSales      int64 `gorm:"default:0" json:"dohan_sales"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cast Cast `gorm:"foreignKey:CastID" json:"-"`
}

// TableName returns the table name for the CastDailySummary model
func (CastDailySummary) TableName() string {
	return "cast_daily_summaries"
}
