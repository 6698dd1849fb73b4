package payroll

import (
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

func autoSetMaster() *entity.ItemMaster {
	m := masterWith(901, AutoSetCode, 6000, setCategory())
	m.DurationMin = 60
	return m
}

func autoExtMaster() *entity.ItemMaster {
	m := masterWith(902, AutoExtCode, 3000, extCategory())
	m.DurationMin = 30
	return m
}

// One customer arrived 95 minutes ago: the plan posts one set and two
// 30-minute extensions (ceil((95-60)/30) = 2).
func TestPlanTimeCharges(t *testing.T) {
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
	}

	plan := PlanTimeCharges(bill, at("21:35"))
	if len(plan.Create) != 2 || len(plan.Update) != 0 || len(plan.Delete) != 0 {
		t.Fatalf("plan = %+v, want 2 creates", plan)
	}
	if plan.Create[0].MasterCode != AutoExtCode || plan.Create[0].Qty != 2 {
		t.Fatalf("ext create = %+v, want qty 2", plan.Create[0])
	}
	if plan.Create[1].MasterCode != AutoSetCode || plan.Create[1].Qty != 1 {
		t.Fatalf("set create = %+v, want qty 1", plan.Create[1])
	}
}

// Applying the plan and planning again must change nothing.
func TestPlanTimeChargesIdempotent(t *testing.T) {
	setLine := lineWith(10, autoSetMaster(), 6000, 1, at("20:00"))
	setLine.CustomerID = uintPtr(100)
	extLine := lineWith(11, autoExtMaster(), 3000, 2, at("21:00"))
	extLine.CustomerID = uintPtr(100)

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
		Items: []entity.BillItem{setLine, extLine},
	}

	if plan := PlanTimeCharges(bill, at("21:35")); !plan.Empty() {
		t.Fatalf("reconcile is not idempotent: %+v", plan)
	}
}

func TestPlanTimeChargesUpdatesExtensionQty(t *testing.T) {
	setLine := lineWith(10, autoSetMaster(), 6000, 1, at("20:00"))
	setLine.CustomerID = uintPtr(100)
	extLine := lineWith(11, autoExtMaster(), 3000, 1, at("21:00"))
	extLine.CustomerID = uintPtr(100)

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
		Items: []entity.BillItem{setLine, extLine},
	}

	plan := PlanTimeCharges(bill, at("22:05")) // 125 min -> ext qty 3
	if len(plan.Update) != 1 || plan.Update[0].BillItemID != 11 || plan.Update[0].Qty != 3 {
		t.Fatalf("plan = %+v, want ext qty update to 3", plan)
	}
}

func TestPlanTimeChargesShortStayHasNoExtension(t *testing.T) {
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
	}

	plan := PlanTimeCharges(bill, at("20:45"))
	if len(plan.Create) != 1 || plan.Create[0].MasterCode != AutoSetCode {
		t.Fatalf("plan = %+v, want only the set line", plan)
	}
}

func TestPlanTimeChargesRemovesOrphans(t *testing.T) {
	orphan := lineWith(10, autoSetMaster(), 6000, 1, at("20:00"))
	orphan.CustomerID = uintPtr(999) // customer left the bill
	untagged := lineWith(11, autoExtMaster(), 3000, 1, at("20:30"))

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Items:    []entity.BillItem{orphan, untagged},
	}

	plan := PlanTimeCharges(bill, at("21:00"))
	if len(plan.Delete) != 2 {
		t.Fatalf("plan = %+v, want both orphan lines deleted", plan)
	}
}

func TestPlanTimeChargesDeletesDuplicates(t *testing.T) {
	first := lineWith(10, autoSetMaster(), 6000, 1, at("20:00"))
	first.CustomerID = uintPtr(100)
	dup := lineWith(12, autoSetMaster(), 6000, 1, at("20:01"))
	dup.CustomerID = uintPtr(100)

	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
		Items: []entity.BillItem{first, dup},
	}

	plan := PlanTimeCharges(bill, at("20:30"))
	if len(plan.Delete) != 1 || plan.Delete[0] != 12 {
		t.Fatalf("plan = %+v, want duplicate 12 deleted", plan)
	}
}

func TestPlanTimeChargesExtensionCap(t *testing.T) {
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("00:01"),
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("00:01"))},
		},
	}

	// a stay of several days caps at 99 extensions
	plan := PlanTimeCharges(bill, at("00:01").AddDate(0, 0, 3))
	for _, c := range plan.Create {
		if c.MasterCode == AutoExtCode && c.Qty != autoExtMaxQty {
			t.Fatalf("ext qty = %d, want %d", c.Qty, autoExtMaxQty)
		}
	}
}

func TestPlanTimeChargesSkipsClosedBills(t *testing.T) {
	closed := at("23:00")
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		ClosedAt: &closed,
		Customers: []entity.BillCustomer{
			{BillID: 1, CustomerID: 100, ArrivedAt: timePtr(at("20:00"))},
		},
	}

	if plan := PlanTimeCharges(bill, at("23:30")); !plan.Empty() {
		t.Fatalf("closed bills must never be touched: %+v", plan)
	}
}

func TestExpectedOutMinutes(t *testing.T) {
	set := autoSetMaster()
	ext := autoExtMaster()

	items := []entity.BillItem{
		lineWith(1, set, 6000, 2, at("20:00")), // set qty ignored
		lineWith(2, ext, 3000, 3, at("21:00")),
		lineWith(3, set, 6000, 1, at("21:30")), // only the first set counts
	}
	if got := ExpectedOutMinutes(items); got != 150 {
		t.Fatalf("got %d min, want 150 (60 + 3x30)", got)
	}
}

func TestExpectedOutNilWithoutTimeCharges(t *testing.T) {
	bill := &entity.Bill{
		ID:       1,
		OpenedAt: at("20:00"),
		Items: []entity.BillItem{
			lineWith(1, masterWith(1, "beer", 2000, drinkCategory()), 2000, 1, at("20:00")),
		},
	}
	if got := ExpectedOut(bill); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

// expected_out never moves backwards as set/extension lines are added
func TestExpectedOutMonotonicallyNonDecreasing(t *testing.T) {
	set := autoSetMaster()
	ext := autoExtMaster()

	var items []entity.BillItem
	prev := 0
	add := func(id uint, m *entity.ItemMaster, qty int) {
		items = append(items, lineWith(id, m, m.PriceRegular, qty, at("20:00")))
		cur := ExpectedOutMinutes(items)
		if cur < prev {
			t.Fatalf("expected-out decreased: %d -> %d after line %d", prev, cur, id)
		}
		prev = cur
	}

	add(1, set, 1)
	add(2, ext, 1)
	add(3, ext, 2)
	add(4, set, 1)
	add(5, ext, 5)
}
