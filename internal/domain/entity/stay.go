package entity

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// BillCastStay records a cast sitting at a bill under a stay type.
// Invariant: at most one stay per (bill, cast) with LeftAt null.
type BillCastStay struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BillID uint `gorm:"not null;index" json:"bill_id"`
	CastID uint `gorm:"not null;index" json:"cast_id"`

	EnteredAt time.Time     `gorm:"not null" json:"entered_at"`
	LeftAt    *time.Time    `json:"left_at,omitempty"`
	StayType  enum.StayType `gorm:"size:10;not null" json:"stay_type"`

	// IsHonshimei marks the true main nomination; a cast may only
	// self-order on a bill while in a live honshimei nom stay.
	IsHonshimei bool `gorm:"default:false" json:"is_honshimei"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cast Cast `gorm:"foreignKey:CastID" json:"cast,omitempty"`
}

// TableName returns the table name for the BillCastStay model
func (BillCastStay) TableName() string {
	return "bill_cast_stays"
}

// IsOpen reports whether the cast is still seated
func (s *BillCastStay) IsOpen() bool {
	return s.LeftAt == nil
}

// BillCustomer records a customer's presence on a bill.
// left_at >= arrived_at is enforced by a check constraint.
type BillCustomer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BillID     uint `gorm:"not null;uniqueIndex:idx_bill_customer" json:"bill_id"`
	CustomerID uint `gorm:"not null;uniqueIndex:idx_bill_customer" json:"customer_id"`

	ArrivedAt *time.Time `json:"arrived_at,omitempty"`
	LeftAt    *time.Time `gorm:"check:left_at IS NULL OR arrived_at IS NULL OR left_at >= arrived_at" json:"left_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName returns the table name for the BillCustomer model
func (BillCustomer) TableName() string {
	return "bill_customers"
}

// StayMinutes returns the customer's stay length as of now, zero when
// arrival was never recorded.
func (bc *BillCustomer) StayMinutes(now time.Time) int {
	if bc.ArrivedAt == nil {
		return 0
	}
	end := now
	if bc.LeftAt != nil {
		end = *bc.LeftAt
	}
	min := int(end.Sub(*bc.ArrivedAt).Minutes())
	if min < 0 {
		return 0
	}
	return min
}

// BillCustomerNomination is the interval during which a cast is
// nominated by a customer on a bill. Unique per (bill, customer, cast).
type BillCustomerNomination struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BillID     uint `gorm:"not null;uniqueIndex:idx_bill_customer_nom" json:"bill_id"`
	CustomerID uint `gorm:"not null;uniqueIndex:idx_bill_customer_nom" json:"customer_id"`
	CastID     uint `gorm:"not null;uniqueIndex:idx_bill_customer_nom" json:"cast_id"`

	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cast Cast `gorm:"foreignKey:CastID" json:"cast,omitempty"`
}

// TableName returns the table name for the BillCustomerNomination model
func (BillCustomerNomination) TableName() string {
	return "bill_customer_nominations"
}

// ActiveAt reports whether the nomination covers instant t
func (n *BillCustomerNomination) ActiveAt(t time.Time) bool {
	if n.StartedAt.After(t) {
		return false
	}
	return n.EndedAt == nil || t.Before(*n.EndedAt)
}
