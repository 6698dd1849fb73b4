package entity

import (
	"time"
)

// BillItem is a single line on a bill. Name and price are denormalized
// at order time so that later master edits or deletions do not rewrite
// history. BackRate is resolved at write time for display; settlement
// re-resolves rates per cast.
type BillItem struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BillID uint `gorm:"not null;index" json:"bill_id"`

	ItemMasterID *uint  `gorm:"index" json:"item_master_id,omitempty"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Price        int64  `gorm:"not null" json:"price"`
	Qty          int    `gorm:"not null;default:1" json:"qty"`
	OrderedAt    time.Time `gorm:"not null;index" json:"ordered_at"`

	// ServedByCasts (M:N) is the source of truth for attribution;
	// ServedByCastID is the convenience fallback when the set is empty.
	ServedByCastID *uint  `gorm:"index" json:"served_by_cast_id,omitempty"`
	ServedByCasts  []Cast `gorm:"many2many:bill_item_casts" json:"served_by_casts,omitempty"`

	BackRate float64 `gorm:"default:0" json:"back_rate"`

	// CustomerID ties auto-posted set/extension lines to a customer
	CustomerID *uint `gorm:"index" json:"customer_id,omitempty"`

	IsNomination      bool `gorm:"default:false" json:"is_nomination"`
	IsInhouse         bool `gorm:"default:false" json:"is_inhouse"`
	IsDohan           bool `gorm:"default:false" json:"is_dohan"`
	ExcludeFromPayout bool `gorm:"default:false" json:"exclude_from_payout"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ItemMaster *ItemMaster `gorm:"foreignKey:ItemMasterID" json:"item_master,omitempty"`
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// Subtotal is price times quantity
func (i *BillItem) Subtotal() int64 {
	return i.Price * int64(i.Qty)
}

// Category returns the item's category through its master, nil when the
// master has been deleted.
func (i *BillItem) Category() *ItemCategory {
	if i.ItemMaster == nil {
		return nil
	}
	return i.ItemMaster.Category
}

// AttributedCastIDs returns the casts this line is attributed to:
// the M:N set when present, else the single served-by cast.
func (i *BillItem) AttributedCastIDs() []uint {
	if len(i.ServedByCasts) > 0 {
		ids := make([]uint, 0, len(i.ServedByCasts))
		for j := range i.ServedByCasts {
			ids = append(ids, i.ServedByCasts[j].ID)
		}
		return ids
	}
	if i.ServedByCastID != nil {
		return []uint{*i.ServedByCastID}
	}
	return nil
}
