package entity

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// ItemCategory classifies item masters and carries category-level
// back-rates plus the flags that drive payout exceptions.
type ItemCategory struct {
	Code       string          `gorm:"size:30;primaryKey" json:"code"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	MajorGroup enum.MajorGroup `gorm:"size:20;not null" json:"major_group"`

	FreeBackRate       float64 `gorm:"default:0" json:"free_back_rate"`
	NominationBackRate float64 `gorm:"default:0" json:"nomination_back_rate"`
	InhouseBackRate    float64 `gorm:"default:0" json:"inhouse_back_rate"`

	UseFixedPayoutFreeIn bool   `gorm:"default:false" json:"use_fixed_payout_free_in"`
	PayoutFixedPerItem   *int64 `json:"payout_fixed_per_item,omitempty"`
	ExcludeFromNomPool   bool   `gorm:"default:false" json:"exclude_from_nom_pool"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the ItemCategory model
func (ItemCategory) TableName() string {
	return "item_categories"
}

// BackRate returns the category back-rate for a stay type. Categories
// carry no dohan rate; dohan falls through to the store default.
func (c *ItemCategory) BackRate(stay enum.StayType) (float64, bool) {
	switch stay {
	case enum.StayFree:
		return c.FreeBackRate, c.FreeBackRate > 0
	case enum.StayNom:
		return c.NominationBackRate, c.NominationBackRate > 0
	case enum.StayInHouse:
		return c.InhouseBackRate, c.InhouseBackRate > 0
	}
	return 0, false
}

// ItemMaster is a sellable item belonging to a store
type ItemMaster struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	StoreID uint   `gorm:"not null;uniqueIndex:idx_item_masters_store_code" json:"store_id"`
	Code    string `gorm:"size:30;not null;uniqueIndex:idx_item_masters_store_code" json:"code"`
	Name    string `gorm:"size:100;not null" json:"name"`

	PriceRegular int64  `gorm:"not null" json:"price_regular"`
	Cost         *int64 `json:"cost,omitempty"`

	// DurationMin applies to set and extension items only
	DurationMin int `gorm:"default:0" json:"duration_min"`

	ApplyService       bool   `gorm:"default:true" json:"apply_service"`
	ExcludeFromPayout  bool   `gorm:"default:false" json:"exclude_from_payout"`
	ItemCategoryCode   string `gorm:"size:30;not null;index" json:"item_category_code"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Store    Store         `gorm:"foreignKey:StoreID" json:"-"`
	Category *ItemCategory `gorm:"foreignKey:ItemCategoryCode;references:Code" json:"category,omitempty"`
}

// TableName returns the table name for the ItemMaster model
func (ItemMaster) TableName() string {
	return "item_masters"
}

// CostValue returns the cost or zero when unset
func (m *ItemMaster) CostValue() int64 {
	if m.Cost == nil {
		return 0
	}
	return *m.Cost
}
