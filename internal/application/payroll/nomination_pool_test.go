package payroll

import (
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

// Legacy pool: a single ¥3000 nomination line at a 50% pool rate pays
// ¥1500 to the main cast.
func TestLegacyNomPoolSingleMainCast(t *testing.T) {
	store := testStore() // NomPoolRate 0.50
	eng := NewDefaultEngine(Settings{UseTimeboxedNomPool: false})
	drink := masterWith(1, "shimei", 3000, drinkCategory())

	line := lineWith(1, drink, 3000, 1, at("20:00"))
	line.IsNomination = true
	bill := &entity.Bill{
		ID:         1,
		OpenedAt:   at("20:00"),
		MainCastID: uintPtr(7),
		Items:      []entity.BillItem{line},
	}

	got := eng.NominationPayouts(store, bill, at("22:00"))
	if len(got) != 1 || got[7] != 1500 {
		t.Fatalf("got %v, want {7: 1500}", got)
	}
}

func TestLegacyNomPoolSplitsAcrossRecipients(t *testing.T) {
	store := testStore()
	eng := NewDefaultEngine(Settings{})
	drink := masterWith(1, "shimei", 3000, drinkCategory())

	line := lineWith(1, drink, 3000, 1, at("20:00"))
	line.IsNomination = true
	bill := &entity.Bill{
		ID:             1,
		OpenedAt:       at("20:00"),
		MainCastID:     uintPtr(7),
		NominatedCasts: []entity.Cast{{ID: 8}, {ID: 9}},
		Items:          []entity.BillItem{line},
	}

	got := eng.NominationPayouts(store, bill, at("22:00"))
	// pool 1500 over 3 recipients = 500 each, main cast included
	if got[7] != 500 || got[8] != 500 || got[9] != 500 {
		t.Fatalf("got %v, want 500 each", got)
	}
}

func TestLegacyNomPoolRespectsExclusions(t *testing.T) {
	store := testStore()
	eng := NewDefaultEngine(Settings{})

	excluded := drinkCategory()
	excluded.Code = "service_fee"
	excluded.ExcludeFromNomPool = true

	l1 := lineWith(1, masterWith(1, "shimei", 3000, drinkCategory()), 3000, 1, at("20:00"))
	l1.IsNomination = true
	l2 := lineWith(2, masterWith(2, "fee", 9000, excluded), 9000, 1, at("20:05"))
	l2.IsNomination = true
	l3 := lineWith(3, masterWith(3, "shimei2", 5000, drinkCategory()), 5000, 1, at("20:10"))
	l3.IsNomination = true
	l3.ExcludeFromPayout = true

	bill := &entity.Bill{
		ID:         1,
		OpenedAt:   at("20:00"),
		MainCastID: uintPtr(7),
		Items:      []entity.BillItem{l1, l2, l3},
	}

	got := eng.NominationPayouts(store, bill, at("22:00"))
	if got[7] != 1500 {
		t.Fatalf("got %v, want {7: 1500} (only line 1 pools)", got)
	}
}

// Time-boxed pool: customer 20:00-21:00, cast A nominated for the
// first half and cast B for the second, drinks at 20:10 (¥10000) and
// 20:40 (¥2000), pool rate 20%: A earns 2000, B earns 400.
func TestTimeboxedNomPool(t *testing.T) {
	store := testStore()
	store.NomPoolRate = 0.20
	eng := NewDefaultEngine(Settings{UseTimeboxedNomPool: true})

	drink := drinkCategory()
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00")), LeftAt: timePtr(at("21:00"))},
		},
		Nominations: []entity.BillCustomerNomination{
			{BillID: 1, CustomerID: 100, CastID: 1, StartedAt: at("20:00"), EndedAt: timePtr(at("20:30"))},
			{BillID: 1, CustomerID: 100, CastID: 2, StartedAt: at("20:30")},
		},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "d1", 10000, drink), 10000, 1, at("20:10")),
			lineWith(2, masterWith(2, "d2", 2000, drink), 2000, 1, at("20:40")),
		},
	}

	got := eng.NominationPayouts(store, bill, at("23:00"))
	if got[1] != 2000 {
		t.Fatalf("cast A = %d, want 2000", got[1])
	}
	if got[2] != 400 {
		t.Fatalf("cast B = %d, want 400", got[2])
	}
}

// An item ordered exactly at a nomination boundary belongs to the
// interval that starts there.
func TestTimeboxedNomPoolBoundaryTieGoesToLaterInterval(t *testing.T) {
	store := testStore()
	store.NomPoolRate = 0.20
	eng := NewDefaultEngine(Settings{UseTimeboxedNomPool: true})

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00")), LeftAt: timePtr(at("21:00"))},
		},
		Nominations: []entity.BillCustomerNomination{
			{BillID: 1, CustomerID: 100, CastID: 1, StartedAt: at("20:00"), EndedAt: timePtr(at("20:30"))},
			{BillID: 1, CustomerID: 100, CastID: 2, StartedAt: at("20:30")},
		},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "d1", 10000, drinkCategory()), 10000, 1, at("20:30")),
		},
	}

	got := eng.NominationPayouts(store, bill, at("23:00"))
	if got[1] != 0 {
		t.Fatalf("cast A = %d, want 0 (item is on the boundary)", got[1])
	}
	if got[2] != 2000 {
		t.Fatalf("cast B = %d, want 2000", got[2])
	}
}

func TestTimeboxedNomPoolSkipsIntervalsWithoutActiveCasts(t *testing.T) {
	store := testStore()
	store.NomPoolRate = 0.20
	eng := NewDefaultEngine(Settings{UseTimeboxedNomPool: true})

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00")), LeftAt: timePtr(at("21:00"))},
		},
		Nominations: []entity.BillCustomerNomination{
			// nobody nominated before 20:30
			{BillID: 1, CustomerID: 100, CastID: 2, StartedAt: at("20:30")},
		},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "d1", 10000, drinkCategory()), 10000, 1, at("20:10")),
		},
	}

	got := eng.NominationPayouts(store, bill, at("23:00"))
	if len(got) != 0 {
		t.Fatalf("got %v, want empty (item fell in an interval with no casts)", got)
	}
}

func TestTimeboxedNomPoolOpenEndedStayUsesNow(t *testing.T) {
	store := testStore()
	store.NomPoolRate = 0.20
	eng := NewDefaultEngine(Settings{UseTimeboxedNomPool: true})

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
		Nominations: []entity.BillCustomerNomination{
			{BillID: 1, CustomerID: 100, CastID: 1, StartedAt: at("20:00")},
		},
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "d1", 5000, drinkCategory()), 5000, 1, at("20:10")),
		},
	}

	got := eng.NominationPayouts(store, bill, at("20:30"))
	if got[1] != 1000 {
		t.Fatalf("got %v, want {1: 1000}", got)
	}
}

// Auto-posted set and extension lines are payout-excluded at creation;
// their charge must never feed the nomination pool.
func TestTimeboxedNomPoolIgnoresAutoTimeCharges(t *testing.T) {
	store := testStore()
	store.NomPoolRate = 0.20
	eng := NewDefaultEngine(Settings{UseTimeboxedNomPool: true})

	auto := lineWith(1, masterWith(1, AutoSetCode, 6000, setCategory()), 6000, 1, at("20:05"))
	auto.ExcludeFromPayout = true
	auto.CustomerID = uintPtr(100)

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00")), LeftAt: timePtr(at("21:00"))},
		},
		Nominations: []entity.BillCustomerNomination{
			{BillID: 1, CustomerID: 100, CastID: 1, StartedAt: at("20:00")},
		},
		Items: []entity.BillItem{auto},
	}

	got := eng.NominationPayouts(store, bill, at("23:00"))
	if got[1] != 0 {
		t.Fatalf("cast = %d, want 0 (time charges never pool)", got[1])
	}

	drink := lineWith(2, masterWith(2, "d1", 6000, drinkCategory()), 6000, 1, at("20:05"))
	bill.Items = append(bill.Items, drink)
	got = eng.NominationPayouts(store, bill, at("23:00"))
	if got[1] != 1200 {
		t.Fatalf("cast = %d, want 1200 (only the drink pools)", got[1])
	}
}
