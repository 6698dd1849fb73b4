package payroll

import (
	"testing"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// Basic pricing: set ¥6000 + drink ¥2000 x2 at 10% service and 10% tax.
func TestPriceBasicPipeline(t *testing.T) {
	store := testStore()
	set := masterWith(1, "set60", 6000, setCategory())
	set.DurationMin = 60
	drink := masterWith(2, "beer", 2000, drinkCategory())

	bill := &entity.Bill{
		ID:                 1,
		OpenedAt:           at("20:00"),
		ApplyServiceCharge: true,
		ApplyTax:           true,
		Items: []entity.BillItem{
			lineWith(1, set, 6000, 1, at("20:00")),
			lineWith(2, drink, 2000, 2, at("20:10")),
		},
	}

	got := Price(store, bill)
	if got.Subtotal != 10000 {
		t.Fatalf("subtotal = %d, want 10000", got.Subtotal)
	}
	if got.ServiceCharge != 1000 {
		t.Fatalf("service = %d, want 1000", got.ServiceCharge)
	}
	if got.Tax != 1100 {
		t.Fatalf("tax = %d, want 1100", got.Tax)
	}
	if got.GrandTotal != 12100 {
		t.Fatalf("grand = %d, want 12100", got.GrandTotal)
	}
}

func TestPriceFlagsDisableComponents(t *testing.T) {
	store := testStore()
	drink := masterWith(1, "beer", 2000, drinkCategory())
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Items:    []entity.BillItem{lineWith(1, drink, 2000, 5, at("20:00"))},
	}

	got := Price(store, bill)
	if got.ServiceCharge != 0 || got.Tax != 0 {
		t.Fatalf("disabled flags must zero the components, got %+v", got)
	}
	if got.GrandTotal != got.Subtotal {
		t.Fatalf("grand %d != subtotal %d", got.GrandTotal, got.Subtotal)
	}
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		name string
		rule *entity.DiscountRule
		raw  int64
		want int64
	}{
		{"nil rule", nil, 10000, 10000},
		{"amount off", &entity.DiscountRule{AmountOff: int64Ptr(3000)}, 10000, 7000},
		{"amount off clamps", &entity.DiscountRule{AmountOff: int64Ptr(20000)}, 10000, 0},
		{"percent fraction", &entity.DiscountRule{PercentOff: float64Ptr(0.25)}, 10000, 7500},
		{"percent legacy", &entity.DiscountRule{PercentOff: float64Ptr(25)}, 10000, 7500},
	}
	for _, c := range cases {
		if got := ApplyDiscount(c.raw, c.rule); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestPriceSeatTypeServiceRateOverride(t *testing.T) {
	store := testStore()
	drink := masterWith(1, "beer", 2000, drinkCategory())
	bill := &entity.Bill{
		ID:                 1,
		OpenedAt:           at("20:00"),
		ApplyServiceCharge: true,
		Table: entity.Table{
			StoreID:  1,
			SeatType: &entity.SeatType{ServiceRate: float64Ptr(0.20)},
		},
		Items: []entity.BillItem{lineWith(1, drink, 2000, 5, at("20:00"))},
	}

	got := Price(store, bill)
	if got.ServiceCharge != 2000 {
		t.Fatalf("service = %d, want 2000 (seat override 20%%)", got.ServiceCharge)
	}
}

// Basic pricing scenario's cast back: both lines served free, category
// rate 0.30 over ¥10000 yields ¥3000.
func TestCastPayoutsItemBack(t *testing.T) {
	store := testStore()
	eng := NewDefaultEngine(Settings{})
	cat := drinkCategory()
	set := masterWith(1, "set60", 6000, cat)
	drink := masterWith(2, "beer", 2000, cat)

	castID := uint(7)
	bill := &entity.Bill{ID: 1, OpenedAt: at("20:00")}
	l1 := lineWith(1, set, 6000, 1, at("20:00"))
	l1.ServedByCastID = &castID
	l2 := lineWith(2, drink, 2000, 2, at("20:10"))
	l2.ServedByCastID = &castID
	bill.Items = []entity.BillItem{l1, l2}

	rows := CastPayouts(store, bill, eng, at("23:00"))
	var total int64
	for _, r := range rows {
		if r.CastID != castID || r.Kind != KindItemBack {
			t.Fatalf("unexpected row %+v", r)
		}
		total += r.Amount
	}
	if total != 3000 {
		t.Fatalf("item back total = %d, want 3000", total)
	}
}

func TestCastPayoutsSkipsNominationAndExcludedLines(t *testing.T) {
	store := testStore()
	eng := NewDefaultEngine(Settings{})
	drink := masterWith(1, "beer", 2000, drinkCategory())
	castID := uint(7)

	nomLine := lineWith(1, drink, 3000, 1, at("20:00"))
	nomLine.ServedByCastID = &castID
	nomLine.IsNomination = true

	exLine := lineWith(2, drink, 3000, 1, at("20:05"))
	exLine.ServedByCastID = &castID
	exLine.ExcludeFromPayout = true

	bill := &entity.Bill{ID: 1, OpenedAt: at("20:00"), Items: []entity.BillItem{nomLine, exLine}}
	for _, r := range CastPayouts(store, bill, eng, at("23:00")) {
		if r.Kind == KindItemBack {
			t.Fatalf("excluded line produced item back: %+v", r)
		}
	}
}

// Split attribution divides each cast's commission equally, floored at
// ¥100, with the residue left to the store.
func TestCastPayoutsSplitAttribution(t *testing.T) {
	store := testStore()
	eng := NewDefaultEngine(Settings{})
	drink := masterWith(1, "beer", 2500, drinkCategory())

	line := lineWith(1, drink, 2500, 1, at("20:00"))
	line.ServedByCasts = []entity.Cast{{ID: 7, StoreID: 1}, {ID: 8, StoreID: 1}}
	bill := &entity.Bill{ID: 1, OpenedAt: at("20:00"), Items: []entity.BillItem{line}}

	rows := CastPayouts(store, bill, eng, at("23:00"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// full commission 2500 x 0.30 = 750 each; split by 2 = 375 -> ¥300
	for _, r := range rows {
		if r.Amount != 300 {
			t.Fatalf("split share = %d, want 300", r.Amount)
		}
	}
}

func TestCastPayoutsSplitResolvesRatesIndividually(t *testing.T) {
	store := testStore()
	eng := NewDefaultEngine(Settings{})
	drink := masterWith(1, "beer", 10000, drinkCategory())

	line := lineWith(1, drink, 10000, 1, at("20:00"))
	line.ServedByCasts = []entity.Cast{{ID: 7, StoreID: 1}, {ID: 8, StoreID: 1}}
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Items:    []entity.BillItem{line},
		CastStays: []entity.BillCastStay{
			{BillID: 1, CastID: 8, EnteredAt: at("20:00"), StayType: enum.StayNom},
		},
	}

	rows := CastPayouts(store, bill, eng, at("23:00"))
	byCast := map[uint]int64{}
	for _, r := range rows {
		byCast[r.CastID] = r.Amount
	}
	// cast 7 free: 10000 x 0.30 / 2 = 1500; cast 8 nom: 10000 x 0.40 / 2 = 2000
	if byCast[7] != 1500 {
		t.Fatalf("cast 7 share = %d, want 1500", byCast[7])
	}
	if byCast[8] != 2000 {
		t.Fatalf("cast 8 share = %d, want 2000", byCast[8])
	}
}

func TestResolveStoreID(t *testing.T) {
	bill := &entity.Bill{ID: 1, Table: entity.Table{StoreID: 3}}
	if id, ok := ResolveStoreID(bill); !ok || id != 3 {
		t.Fatalf("table path failed: %d %v", id, ok)
	}

	master := masterWith(1, "beer", 2000, drinkCategory())
	bill = &entity.Bill{ID: 2, Items: []entity.BillItem{lineWith(1, master, 2000, 1, time.Now())}}
	if id, ok := ResolveStoreID(bill); !ok || id != 1 {
		t.Fatalf("item path failed: %d %v", id, ok)
	}

	bill = &entity.Bill{ID: 3}
	if _, ok := ResolveStoreID(bill); ok {
		t.Fatal("empty bill must not resolve a store")
	}
}
