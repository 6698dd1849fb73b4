package payroll

import (
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// dosukoi-asa exclusivity: with a dohan stay on the bill, the dohan
// pool pays 30% of the subtotal and the nomination pool is empty.
func TestDosukoiDohanWinsOverNomination(t *testing.T) {
	store := testStore()
	store.Slug = "dosukoi-asa"
	eng := NewDosukoiAsaEngine(Settings{})

	bill := &entity.Bill{
		ID:         1,
		OpenedAt:   at("10:00"),
		MainCastID: uintPtr(7),
		CastStays: []entity.BillCastStay{
			{BillID: 1, CastID: 9, EnteredAt: at("10:00"), StayType: enum.StayDohan},
		},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "set", 10000, setCategory()), 10000, 1, at("10:00")),
		},
	}

	dohan := eng.DohanPayouts(store, bill, at("12:00"))
	if dohan[9] != 3000 {
		t.Fatalf("dohan = %v, want {9: 3000}", dohan)
	}

	nom := eng.NominationPayouts(store, bill, at("12:00"))
	if len(nom) != 0 {
		t.Fatalf("nomination = %v, want empty (dohan wins)", nom)
	}
}

func TestDosukoiNominationWithoutDohan(t *testing.T) {
	store := testStore()
	eng := NewDosukoiAsaEngine(Settings{})

	bill := &entity.Bill{
		ID:         1,
		OpenedAt:   at("10:00"),
		MainCastID: uintPtr(7),
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "set", 10000, setCategory()), 10000, 1, at("10:00")),
		},
	}

	nom := eng.NominationPayouts(store, bill, at("12:00"))
	// 20% of subtotal wholly to the main cast
	if nom[7] != 2000 {
		t.Fatalf("nomination = %v, want {7: 2000}", nom)
	}
}

func TestDosukoiNominationSplitsAmongNominatedCasts(t *testing.T) {
	store := testStore()
	eng := NewDosukoiAsaEngine(Settings{})

	bill := &entity.Bill{
		ID:             1,
		OpenedAt:       at("10:00"),
		MainCastID:     uintPtr(7),
		NominatedCasts: []entity.Cast{{ID: 8}, {ID: 9}},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "set", 10000, setCategory()), 10000, 1, at("10:00")),
		},
	}

	nom := eng.NominationPayouts(store, bill, at("12:00"))
	// nominated casts take the pool; the main cast is not added on top
	if nom[8] != 1000 || nom[9] != 1000 || nom[7] != 0 {
		t.Fatalf("nomination = %v, want {8: 1000, 9: 1000}", nom)
	}
}

func TestDosukoiDohanSplitsAmongDohanCasts(t *testing.T) {
	store := testStore()
	eng := NewDosukoiAsaEngine(Settings{})

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("10:00"),
		CastStays: []entity.BillCastStay{
			{BillID: 1, CastID: 5, EnteredAt: at("10:00"), StayType: enum.StayDohan},
			{BillID: 1, CastID: 6, EnteredAt: at("10:05"), StayType: enum.StayDohan},
		},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "set", 10001, setCategory()), 10001, 1, at("10:00")),
		},
	}

	dohan := eng.DohanPayouts(store, bill, at("12:00"))
	// floor(10001 x 0.30) = 3000, split 1500 each
	if dohan[5] != 1500 || dohan[6] != 1500 {
		t.Fatalf("dohan = %v, want 1500 each", dohan)
	}
}

func TestDosukoiFixedItemPayout(t *testing.T) {
	eng := NewDosukoiAsaEngine(Settings{})

	flagged := drinkCategory()
	flagged.UseFixedPayoutFreeIn = true
	item := lineWith(1, masterWith(1, "beer", 2000, flagged), 2000, 3, at("10:00"))
	bill := &entity.Bill{ID: 1}

	amount, ok := eng.ItemPayoutOverride(bill, &item, enum.StayFree)
	if !ok || amount != 1500 {
		t.Fatalf("got (%d, %v), want (1500, true)", amount, ok)
	}

	// nom stays fall back to rate-based commission
	if _, ok := eng.ItemPayoutOverride(bill, &item, enum.StayNom); ok {
		t.Fatal("override must not apply to nom stays")
	}

	plain := lineWith(2, masterWith(2, "beer", 2000, drinkCategory()), 2000, 3, at("10:00"))
	if _, ok := eng.ItemPayoutOverride(bill, &plain, enum.StayFree); ok {
		t.Fatal("override must not apply to unflagged categories")
	}
}

// A flagged category carrying its own payout_fixed_per_item wins over
// the seed fallback.
func TestDosukoiFixedItemPayoutCategoryAmount(t *testing.T) {
	eng := NewDosukoiAsaEngine(Settings{})

	flagged := drinkCategory()
	flagged.UseFixedPayoutFreeIn = true
	flagged.PayoutFixedPerItem = int64Ptr(300)
	item := lineWith(1, masterWith(1, "beer", 2000, flagged), 2000, 3, at("10:00"))

	amount, ok := eng.ItemPayoutOverride(&entity.Bill{ID: 1}, &item, enum.StayInHouse)
	if !ok || amount != 900 {
		t.Fatalf("got (%d, %v), want (900, true)", amount, ok)
	}
}
