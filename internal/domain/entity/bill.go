package entity

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// DiscountRule is either an absolute amount off or a percent off,
// never both. Percent values >= 1 are treated as percent and divided
// by 100 when applied.
type DiscountRule struct {
	AmountOff  *int64   `json:"amount_off,omitempty"`
	PercentOff *float64 `json:"percent_off,omitempty"`
}

// Valid reports whether exactly one of the two fields is set
func (d *DiscountRule) Valid() bool {
	if d == nil {
		return false
	}
	return (d.AmountOff != nil) != (d.PercentOff != nil)
}

// Bill is the aggregate root of the billing core. A bill belongs to a
// table (and through it to a store), accumulates line items, cast
// stays, customers and nominations, and is closed at most once.
//
// Invariant: PayrollSnapshot is null while ClosedAt is null, and once
// written it is never mutated in place.
type Bill struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	TableID uint `gorm:"not null;index" json:"table_id"`

	OpenedAt    time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt    *time.Time `gorm:"index" json:"closed_at,omitempty"`
	ExpectedOut *time.Time `json:"expected_out,omitempty"`
	Pax         int        `gorm:"default:1" json:"pax"`

	ApplyServiceCharge bool          `gorm:"default:true" json:"apply_service_charge"`
	ApplyTax           bool          `gorm:"default:true" json:"apply_tax"`
	DiscountRule       *DiscountRule `gorm:"serializer:json" json:"discount_rule,omitempty"`

	Subtotal      int64  `gorm:"default:0" json:"subtotal"`
	ServiceCharge int64  `gorm:"default:0" json:"service_charge"`
	Tax           int64  `gorm:"default:0" json:"tax"`
	GrandTotal    int64  `gorm:"default:0" json:"grand_total"`
	SettledTotal  *int64 `json:"settled_total,omitempty"`
	Total         int64  `gorm:"default:0" json:"total"`
	PaidCash      int64  `gorm:"default:0" json:"paid_cash"`
	PaidCard      int64  `gorm:"default:0" json:"paid_card"`

	MainCastID *uint `gorm:"index" json:"main_cast_id,omitempty"`

	// PayrollSnapshot is the opaque compensation-of-record document
	PayrollSnapshot []byte `gorm:"type:jsonb" json:"payroll_snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Table          Table                    `gorm:"foreignKey:TableID" json:"table,omitempty"`
	MainCast       *Cast                    `gorm:"foreignKey:MainCastID" json:"main_cast,omitempty"`
	NominatedCasts []Cast                   `gorm:"many2many:bill_nominated_casts" json:"nominated_casts,omitempty"`
	Items          []BillItem               `gorm:"foreignKey:BillID" json:"items,omitempty"`
	CastStays      []BillCastStay           `gorm:"foreignKey:BillID" json:"cast_stays,omitempty"`
	Customers      []BillCustomer           `gorm:"foreignKey:BillID" json:"customers,omitempty"`
	Nominations    []BillCustomerNomination `gorm:"foreignKey:BillID" json:"nominations,omitempty"`
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// IsClosed reports whether the bill has been settled
func (b *Bill) IsClosed() bool {
	return b.ClosedAt != nil
}

// RawSubtotal sums the line subtotals before any discount
func (b *Bill) RawSubtotal() int64 {
	var sum int64
	for i := range b.Items {
		sum += b.Items[i].Subtotal()
	}
	return sum
}

// StayTypeOf resolves the stay type for a cast on this bill: the open
// stay wins, otherwise the most recent closed stay, otherwise free.
func (b *Bill) StayTypeOf(castID uint) enum.StayType {
	var latest *BillCastStay
	for i := range b.CastStays {
		s := &b.CastStays[i]
		if s.CastID != castID {
			continue
		}
		if s.LeftAt == nil {
			return s.StayType
		}
		if latest == nil || s.EnteredAt.After(latest.EnteredAt) {
			latest = s
		}
	}
	if latest != nil {
		return latest.StayType
	}
	return enum.StayFree
}

// HasDohanStay reports whether any cast entered this bill on dohan
func (b *Bill) HasDohanStay() bool {
	for i := range b.CastStays {
		if b.CastStays[i].StayType == enum.StayDohan {
			return true
		}
	}
	return false
}

// DohanCastIDs returns the casts with a dohan stay, in stay order
func (b *Bill) DohanCastIDs() []uint {
	var ids []uint
	seen := make(map[uint]bool)
	for i := range b.CastStays {
		s := &b.CastStays[i]
		if s.StayType == enum.StayDohan && !seen[s.CastID] {
			ids = append(ids, s.CastID)
			seen[s.CastID] = true
		}
	}
	return ids
}

// NominationRecipients returns nominated casts plus the main cast,
// deduplicated, in a stable order.
func (b *Bill) NominationRecipients() []uint {
	var ids []uint
	seen := make(map[uint]bool)
	for i := range b.NominatedCasts {
		id := b.NominatedCasts[i].ID
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if b.MainCastID != nil && !seen[*b.MainCastID] {
		ids = append(ids, *b.MainCastID)
	}
	return ids
}
