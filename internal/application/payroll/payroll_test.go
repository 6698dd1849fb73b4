package payroll

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// Shared fixtures for the payroll core tests.

func testStore() *entity.Store {
	return &entity.Store{
		ID:                    1,
		Slug:                  "main",
		Name:                  "Main",
		ServiceRate:           0.10,
		TaxRate:               0.10,
		FreeBackRate:          0.10,
		NominationBackRate:    0.40,
		InhouseBackRate:       0.25,
		DohanBackRate:         0.40,
		NomPoolRate:           0.50,
		BusinessDayCutoffHour: 6,
		PayrollCutoffKind:     enum.CutoffEndOfMonth,
	}
}

func drinkCategory() *entity.ItemCategory {
	return &entity.ItemCategory{
		Code:         "drink",
		Name:         "ドリンク",
		MajorGroup:   enum.GroupDrink,
		FreeBackRate: 0.30,
	}
}

func champagneCategory() *entity.ItemCategory {
	return &entity.ItemCategory{
		Code:       "champagne",
		Name:       "シャンパン",
		MajorGroup: enum.GroupChampagne,
	}
}

func setCategory() *entity.ItemCategory {
	return &entity.ItemCategory{
		Code:       "set",
		Name:       "セット",
		MajorGroup: enum.GroupSet,
	}
}

func extCategory() *entity.ItemCategory {
	return &entity.ItemCategory{
		Code:       "extension",
		Name:       "延長",
		MajorGroup: enum.GroupExtension,
	}
}

func masterWith(id uint, code string, price int64, cat *entity.ItemCategory) *entity.ItemMaster {
	return &entity.ItemMaster{
		ID:               id,
		StoreID:          1,
		Code:             code,
		Name:             code,
		PriceRegular:     price,
		ItemCategoryCode: cat.Code,
		Category:         cat,
	}
}

func lineWith(id uint, master *entity.ItemMaster, price int64, qty int, orderedAt time.Time) entity.BillItem {
	var masterID *uint
	if master != nil {
		masterID = &master.ID
	}
	name := "line"
	if master != nil {
		name = master.Name
	}
	return entity.BillItem{
		ID:           id,
		BillID:       1,
		ItemMasterID: masterID,
		ItemMaster:   master,
		Name:         name,
		Price:        price,
		Qty:          qty,
		OrderedAt:    orderedAt,
	}
}

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2024-06-01 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func timePtr(t time.Time) *time.Time { return &t }

func uintPtr(v uint) *uint { return &v }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }
