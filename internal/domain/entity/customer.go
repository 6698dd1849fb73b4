package entity

import (
	"time"

	"gorm.io/gorm"
)

// Customer is a guest of a store. Anonymous stub customers are created
// by the pax sync so that every seat on a bill has a customer row.
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	StoreID uint   `gorm:"not null;index" json:"store_id"`
	Code    string `gorm:"size:40;not null;index" json:"code"`
	Name    string `gorm:"size:100" json:"name"`

	// IsStub marks pax-sync placeholder rows
	IsStub bool `gorm:"default:false" json:"is_stub"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Store Store `gorm:"foreignKey:StoreID" json:"-"`
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
