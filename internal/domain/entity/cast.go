package entity

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Cast is a performer. One cast maps to exactly one user and belongs
// to a single store. The optional per-stay-type rates override the
// category and store defaults in the resolver chain.
type Cast struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"not null;uniqueIndex" json:"user_id"`
	StoreID uint `gorm:"not null;index" json:"store_id"`

	Name       string `gorm:"size:100;not null" json:"name"`
	HourlyWage int64  `gorm:"default:0" json:"hourly_wage"`

	FreeBackRate       *float64 `json:"free_back_rate,omitempty"`
	NominationBackRate *float64 `json:"nomination_back_rate,omitempty"`
	InhouseBackRate    *float64 `json:"inhouse_back_rate,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User          User               `gorm:"foreignKey:UserID" json:"-"`
	Store         Store              `gorm:"foreignKey:StoreID" json:"-"`
	CategoryRates []CastCategoryRate `gorm:"foreignKey:CastID" json:"category_rates,omitempty"`
}

// TableName returns the table name for the Cast model
func (Cast) TableName() string {
	return "casts"
}

// OverrideBackRate returns the per-cast stay-type override, if any.
// There is no per-cast dohan override.
func (c *Cast) OverrideBackRate(stay enum.StayType) (float64, bool) {
	var v *float64
	switch stay {
	case enum.StayFree:
		v = c.FreeBackRate
	case enum.StayNom:
		v = c.NominationBackRate
	case enum.StayInHouse:
		v = c.InhouseBackRate
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// CastCategoryRate is the highest-precedence rate override: a single
// (cast, category) pair with its own per-stay-type back-rates.
type CastCategoryRate struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	CastID           uint   `gorm:"not null;uniqueIndex:idx_cast_category" json:"cast_id"`
	ItemCategoryCode string `gorm:"size:30;not null;uniqueIndex:idx_cast_category" json:"item_category_code"`

	FreeBackRate       *float64 `json:"free_back_rate,omitempty"`
	NominationBackRate *float64 `json:"nomination_back_rate,omitempty"`
	InhouseBackRate    *float64 `json:"inhouse_back_rate,omitempty"`
	DohanBackRate      *float64 `json:"dohan_back_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category ItemCategory `gorm:"foreignKey:ItemCategoryCode;references:Code" json:"-"`
}

// TableName returns the table name for the CastCategoryRate model
func (CastCategoryRate) TableName() string {
	return "cast_category_rates"
}

// Rate returns the override for a stay type, if set
func (r *CastCategoryRate) Rate(stay enum.StayType) (float64, bool) {
	var v *float64
	switch stay {
	case enum.StayFree:
		v = r.FreeBackRate
	case enum.StayNom:
		v = r.NominationBackRate
	case enum.StayInHouse:
		v = r.InhouseBackRate
	case enum.StayDohan:
		v = r.DohanBackRate
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// CastAttendance is a single clock-in/clock-out row. Attendance feeds
// the hourly component of payroll and the daily summaries.
type CastAttendance struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	StoreID  uint      `gorm:"not null;index" json:"store_id"`
	CastID   uint      `gorm:"not null;index" json:"cast_id"`
	WorkDate time.Time `gorm:"type:date;not null;index" json:"work_date"`

	ClockInAt  time.Time  `gorm:"not null" json:"clock_in_at"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`

	// Wage at clock-in time, so later wage edits do not rewrite history
	HourlyWage int64 `gorm:"default:0" json:"hourly_wage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cast Cast `gorm:"foreignKey:CastID" json:"-"`
}

// TableName returns the table name for the CastAttendance model
func (CastAttendance) TableName() string {
	return "cast_attendances"
}

// WorkedMinutes returns the attended minutes, zero while still clocked in
func (a *CastAttendance) WorkedMinutes() int {
	if a.ClockOutAt == nil {
		return 0
	}
	min := int(a.ClockOutAt.Sub(a.ClockInAt).Minutes())
	if min < 0 {
		return 0
	}
	return min
}
