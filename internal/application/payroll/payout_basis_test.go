package payroll

import (
	"testing"
)

func TestPayoutBaseChampagneUsesCost(t *testing.T) {
	master := masterWith(1, "dom", 325000, champagneCategory())
	master.Cost = int64Ptr(10000)
	item := lineWith(1, master, 325000, 1, at("21:00"))

	base, basisType, basisValue := PayoutBase(&item)
	if base != 10000 || basisType != BasisCost || basisValue != 10000 {
		t.Fatalf("got (%d, %s, %d), want (10000, cost, 10000)", base, basisType, basisValue)
	}
}

func TestPayoutBaseChampagneZeroCostFallsBack(t *testing.T) {
	master := masterWith(1, "dom", 325000, champagneCategory())
	master.Cost = int64Ptr(0)
	item := lineWith(1, master, 325000, 1, at("21:00"))

	base, basisType, _ := PayoutBase(&item)
	if base != 325000 || basisType != BasisSubtotal {
		t.Fatalf("got (%d, %s), want (325000, subtotal)", base, basisType)
	}
}

func TestPayoutBaseCostScalesWithQty(t *testing.T) {
	master := masterWith(1, "moet", 50000, champagneCategory())
	master.Cost = int64Ptr(8000)
	item := lineWith(1, master, 50000, 3, at("21:00"))

	base, _, _ := PayoutBase(&item)
	if base != 24000 {
		t.Fatalf("got %d, want 24000", base)
	}
}

func TestPayoutBaseNonChampagne(t *testing.T) {
	master := masterWith(1, "beer", 2000, drinkCategory())
	master.Cost = int64Ptr(500) // cost is ignored outside champagne
	item := lineWith(1, master, 2000, 2, at("21:00"))

	base, basisType, _ := PayoutBase(&item)
	if base != 4000 || basisType != BasisSubtotal {
		t.Fatalf("got (%d, %s), want (4000, subtotal)", base, basisType)
	}
}

func TestPayoutBaseNoMaster(t *testing.T) {
	item := lineWith(1, nil, 1500, 2, at("21:00"))
	base, basisType, _ := PayoutBase(&item)
	if base != 3000 || basisType != BasisSubtotal {
		t.Fatalf("got (%d, %s), want (3000, subtotal)", base, basisType)
	}
}
