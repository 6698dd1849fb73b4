package entity

import (
	"time"

	"gorm.io/gorm"
)

// Table is a physical table in a store; bills are scoped to a store
// through their table.
type Table struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	StoreID    uint   `gorm:"not null;uniqueIndex:idx_tables_store_code" json:"store_id"`
	Code       string `gorm:"size:20;not null;uniqueIndex:idx_tables_store_code" json:"code"`
	SeatTypeID *uint  `gorm:"index" json:"seat_type_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Store    Store     `gorm:"foreignKey:StoreID" json:"-"`
	SeatType *SeatType `gorm:"foreignKey:SeatTypeID" json:"seat_type,omitempty"`
}

// TableName returns the table name for the Table model
func (Table) TableName() string {
	return "tables"
}
