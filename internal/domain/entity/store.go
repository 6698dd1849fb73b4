package entity

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Store represents a single establishment. All rates are stored as
// fractions in [0,1); a value >= 1 written by a legacy importer is
// interpreted as percent and normalized on read by the rate resolver.
type Store struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Name string `gorm:"size:100;not null" json:"name"`

	ServiceRate float64 `gorm:"default:0" json:"service_rate"`
	TaxRate     float64 `gorm:"default:0" json:"tax_rate"`

	// Default back-rates per stay-type, lowest precedence in the resolver chain
	FreeBackRate       float64 `gorm:"default:0" json:"free_back_rate"`
	NominationBackRate float64 `gorm:"default:0" json:"nomination_back_rate"`
	InhouseBackRate    float64 `gorm:"default:0" json:"inhouse_back_rate"`
	DohanBackRate      float64 `gorm:"default:0" json:"dohan_back_rate"`

	NomPoolRate float64 `gorm:"default:0" json:"nom_pool_rate"`

	BusinessDayCutoffHour int                    `gorm:"default:6" json:"business_day_cutoff_hour"`
	PayrollCutoffKind     enum.PayrollCutoffKind `gorm:"size:20;default:end_of_month" json:"payroll_cutoff_kind"`
	PayrollCutoffDay      int                    `gorm:"default:0" json:"payroll_cutoff_day"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SeatTypes []SeatType `gorm:"foreignKey:StoreID" json:"seat_types,omitempty"`
}

// TableName returns the table name for the Store model
func (Store) TableName() string {
	return "stores"
}

// DefaultBackRate returns the store-default back-rate for a stay type
func (s *Store) DefaultBackRate(stay enum.StayType) float64 {
	switch stay {
	case enum.StayFree:
		return s.FreeBackRate
	case enum.StayNom:
		return s.NominationBackRate
	case enum.StayInHouse:
		return s.InhouseBackRate
	case enum.StayDohan:
		return s.DohanBackRate
	}
	return 0
}

// SeatType groups tables that carry their own service-charge rate
type SeatType struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	StoreID uint   `gorm:"not null;index" json:"store_id"`
	Name    string `gorm:"size:50;not null" json:"name"`

	// Overrides Store.ServiceRate when set
	ServiceRate *float64 `json:"service_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Store Store `gorm:"foreignKey:StoreID" json:"-"`
}

// TableName returns the table name for the SeatType model
func (SeatType) TableName() string {
	return "seat_types"
}
