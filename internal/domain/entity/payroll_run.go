package entity

import (
	"time"
)

// PayrollRun is one exported payroll period for a store. Runs over an
// overlapping (store, period) window are detected and rejected unless
// the caller forces a re-run.
type PayrollRun struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StoreID uint `gorm:"not null;index" json:"store_id"`

	PeriodStart time.Time `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:date;not null" json:"period_end"`
	ExportedAt  time.Time `gorm:"not null" json:"exported_at"`
	ExportedBy  uint      `gorm:"not null" json:"exported_by"`

	CreatedAt time.Time `json:"created_at"`

	Store Store            `gorm:"foreignKey:StoreID" json:"-"`
	Lines []PayrollRunLine `gorm:"foreignKey:PayrollRunID" json:"lines,omitempty"`
}

// TableName returns the table name for the PayrollRun model
func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// Overlaps reports whether two period windows intersect
func (r *PayrollRun) Overlaps(start, end time.Time) bool {
	return !r.PeriodEnd.Before(start) && !r.PeriodStart.After(end)
}

// PayrollRunLine is one cast's summary line within a run
type PayrollRunLine struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	PayrollRunID uint `gorm:"not null;index" json:"payroll_run_id"`
	CastID       uint `gorm:"not null;index" json:"cast_id"`

	CastName    string `gorm:"size:100;not null" json:"cast_name"`
	HourlyTotal int64  `gorm:"default:0" json:"hourly_total"`
	BackTotal   int64  `gorm:"default:0" json:"back_total"`
	GrandTotal  int64  `gorm:"default:0" json:"grand_total"`
	WorkedMin   int    `gorm:"default:0" json:"worked_min"`

	CreatedAt time.Time `json:"created_at"`

	Cast     Cast                `gorm:"foreignKey:CastID" json:"-"`
	BackRows []PayrollRunBackRow `gorm:"foreignKey:PayrollRunLineID" json:"back_rows,omitempty"`
}

// TableName returns the table name for the PayrollRunLine model
func (PayrollRunLine) TableName() string {
	return "payroll_run_lines"
}

// PayrollRunBackRow is one commission source under a run line: a bill
// item back, a pool share, or an engine-added monthly adjustment.
type PayrollRunBackRow struct {
	ID               uint `gorm:"primaryKey" json:"id"`
	PayrollRunLineID uint `gorm:"not null;index" json:"payroll_run_line_id"`

	BillID     *uint  `json:"bill_id,omitempty"`
	BillItemID *uint  `json:"bill_item_id,omitempty"`
	Label      string `gorm:"size:100;not null" json:"label"`
	UnitPrice  int64  `gorm:"default:0" json:"unit_price"`
	Qty        int    `gorm:"default:0" json:"qty"`
	Subtotal   int64  `gorm:"default:0" json:"subtotal"`
	Amount     int64  `gorm:"not null" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the PayrollRunBackRow model
func (PayrollRunBackRow) TableName() string {
	return "payroll_run_back_rows"
}
