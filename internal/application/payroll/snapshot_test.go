package payroll

import (
	"encoding/json"
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

// closedTestBill assembles a bill with an item back, a nomination pool
// share and a champagne line, ready for snapshotting.
func closedTestBill() (*entity.Store, *entity.Bill) {
	store := testStore()

	drink := masterWith(1, "beer", 2000, drinkCategory())

	champCat := champagneCategory()
	champCat.FreeBackRate = 0.20
	champ := masterWith(2, "dom", 325000, champCat)
	champ.Cost = int64Ptr(10000)

	nomDrink := masterWith(3, "shimei", 3000, drinkCategory())

	castID := uint(7)
	l1 := lineWith(1, drink, 2000, 2, at("20:10"))
	l1.ServedByCastID = &castID
	l2 := lineWith(2, champ, 325000, 1, at("20:30"))
	l2.ServedByCastID = &castID
	l3 := lineWith(3, nomDrink, 3000, 1, at("20:40"))
	l3.IsNomination = true

	bill := &entity.Bill{
		ID:                 1,
		OpenedAt:           at("20:00"),
		ApplyServiceCharge: true,
		ApplyTax:           true,
		MainCastID:         &castID,
		Items:              []entity.BillItem{l1, l2, l3},
	}
	return store, bill
}

func buildTestSnapshot(store *entity.Store, bill *entity.Bill) *Snapshot {
	settings := Settings{}
	eng := NewDefaultEngine(settings)
	builder := NewSnapshotBuilder(settings)
	now := at("23:00")
	rows := CastPayouts(store, bill, eng, now)
	return builder.Build(store, bill, eng, rows, Price(store, bill), now)
}

// Champagne basis: ¥325000 champagne with ¥10000 cost at 20% pays
// ¥2000; zeroing the cost flips the basis to subtotal and pays ¥65000.
func TestSnapshotChampagneBasis(t *testing.T) {
	store, bill := closedTestBill()
	snap := buildTestSnapshot(store, bill)

	var champEffect *PayrollEffect
	for i := range snap.Items {
		if snap.Items[i].BillItemID == 2 {
			if len(snap.Items[i].PayrollEffects) != 1 {
				t.Fatalf("champagne effects = %+v", snap.Items[i].PayrollEffects)
			}
			champEffect = &snap.Items[i].PayrollEffects[0]
		}
	}
	if champEffect == nil {
		t.Fatal("champagne line missing from snapshot")
	}
	if champEffect.Amount != 2000 || champEffect.Basis.BasisType != "cost" {
		t.Fatalf("champagne effect = %+v, want 2000 on cost basis", champEffect)
	}

	// zero cost: basis flips to subtotal with the same rate
	bill.Items[1].ItemMaster.Cost = int64Ptr(0)
	snap = buildTestSnapshot(store, bill)
	for i := range snap.Items {
		if snap.Items[i].BillItemID == 2 {
			eff := snap.Items[i].PayrollEffects[0]
			if eff.Amount != 65000 || eff.Basis.BasisType != "subtotal" {
				t.Fatalf("champagne effect = %+v, want 65000 on subtotal basis", eff)
			}
		}
	}
}

func TestSnapshotInvariants(t *testing.T) {
	store, bill := closedTestBill()
	snap := buildTestSnapshot(store, bill)

	var itemSum int64
	for _, it := range snap.Items {
		for _, eff := range it.PayrollEffects {
			itemSum += eff.Amount
		}
	}
	if itemSum != snap.Totals.ItemTotal {
		t.Fatalf("item effects sum %d != item_total %d", itemSum, snap.Totals.ItemTotal)
	}

	var castSum, adjSum int64
	perType := map[string]int64{}
	for _, c := range snap.ByCast {
		castSum += c.Amount
		var bdSum int64
		for _, row := range c.Breakdown {
			bdSum += row.Amount
			perType[row.Type] += row.Amount
			if row.Type == string(KindAdjustment) {
				adjSum += row.Amount
			}
		}
		if bdSum != c.Amount {
			t.Fatalf("cast %d breakdown sums to %d, amount is %d", c.CastID, bdSum, c.Amount)
		}
	}
	if castSum != snap.Totals.LaborTotal {
		t.Fatalf("by_cast sum %d != labor_total %d", castSum, snap.Totals.LaborTotal)
	}
	if adjSum != 0 {
		t.Fatalf("adjustment rows sum to %d, want 0", adjSum)
	}
	if perType[string(KindItemBack)] != snap.Totals.ItemTotal {
		t.Fatalf("item_back breakdown %d != item_total %d", perType[string(KindItemBack)], snap.Totals.ItemTotal)
	}
	if perType[string(KindNominationPool)] != snap.Totals.NominationTotal {
		t.Fatalf("nomination breakdown %d != nomination_total %d", perType[string(KindNominationPool)], snap.Totals.NominationTotal)
	}
	if perType[string(KindDohanPool)] != snap.Totals.DohanTotal {
		t.Fatalf("dohan breakdown %d != dohan_total %d", perType[string(KindDohanPool)], snap.Totals.DohanTotal)
	}
}

// The hash is a function of totals alone: permuting by_cast entries or
// dropping items must not change it.
func TestSnapshotHashDependsOnTotalsOnly(t *testing.T) {
	store, bill := closedTestBill()
	snap := buildTestSnapshot(store, bill)

	if snap.Hash != HashTotals(snap.Totals) {
		t.Fatal("stored hash does not match recomputed totals hash")
	}

	mutated := *snap
	mutated.ByCast = append([]SnapshotCast{}, snap.ByCast...)
	for i, j := 0, len(mutated.ByCast)-1; i < j; i, j = i+1, j-1 {
		mutated.ByCast[i], mutated.ByCast[j] = mutated.ByCast[j], mutated.ByCast[i]
	}
	mutated.Items = nil
	if HashTotals(mutated.Totals) != snap.Hash {
		t.Fatal("permuting by_cast changed the hash")
	}

	changed := snap.Totals
	changed.LaborTotal++
	if HashTotals(changed) == snap.Hash {
		t.Fatal("changing totals must change the hash")
	}
}

func TestSnapshotRebuildIsDeterministic(t *testing.T) {
	store, bill := closedTestBill()
	a := buildTestSnapshot(store, bill)
	b := buildTestSnapshot(store, bill)
	if a.Hash != b.Hash {
		t.Fatalf("rebuild produced a different hash: %s vs %s", a.Hash, b.Hash)
	}
}

// Dirty detection: deleting a line after close flips is_dirty; an
// untouched bill stays clean.
func TestSnapshotIsDirty(t *testing.T) {
	store, bill := closedTestBill()
	settings := Settings{}
	eng := NewDefaultEngine(settings)
	builder := NewSnapshotBuilder(settings)
	now := at("23:00")

	snap := buildTestSnapshot(store, bill)
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	bill.PayrollSnapshot = raw
	closed := at("23:00")
	bill.ClosedAt = &closed

	if builder.IsDirty(store, bill, eng, now) {
		t.Fatal("untouched bill reported dirty")
	}

	bill.Items = bill.Items[:len(bill.Items)-1]
	if !builder.IsDirty(store, bill, eng, now) {
		t.Fatal("deleting a line must make the snapshot dirty")
	}
}

func TestSnapshotIsDirtyFalseWithoutSnapshot(t *testing.T) {
	store, bill := closedTestBill()
	builder := NewSnapshotBuilder(Settings{})
	if builder.IsDirty(store, bill, NewDefaultEngine(Settings{}), at("23:00")) {
		t.Fatal("a bill without a snapshot is never dirty")
	}
}

func TestSnapshotIsStale(t *testing.T) {
	store, bill := closedTestBill()
	builder := NewSnapshotBuilder(Settings{})
	snap := buildTestSnapshot(store, bill)
	raw, _ := json.Marshal(snap)
	bill.PayrollSnapshot = raw

	if stale, _ := builder.IsStale(bill, "DefaultEngine"); stale {
		t.Fatal("current snapshot reported stale")
	}

	// missing meta
	bill.PayrollSnapshot = []byte(`{"totals":{}}`)
	if stale, _ := builder.IsStale(bill, ""); !stale {
		t.Fatal("snapshot without meta must be stale")
	}

	// old version
	bill.PayrollSnapshot = []byte(`{"meta":{"snapshot_version":1},"totals":{}}`)
	if stale, _ := builder.IsStale(bill, ""); !stale {
		t.Fatal("version 1 snapshot must be stale")
	}

	// flag mismatch
	flipped := NewSnapshotBuilder(Settings{UseTimeboxedNomPool: true})
	bill.PayrollSnapshot = raw
	if stale, _ := flipped.IsStale(bill, ""); !stale {
		t.Fatal("nom pool flag change must make the snapshot stale")
	}

	// engine mismatch is recorded but not stale
	bill.PayrollSnapshot = raw
	stale, reason := builder.IsStale(bill, "GardenEngine")
	if stale {
		t.Fatal("engine mismatch must not make the snapshot stale")
	}
	if reason == "" {
		t.Fatal("engine mismatch should be surfaced in the reason")
	}

	// no snapshot, never stale
	bill.PayrollSnapshot = nil
	if stale, _ := builder.IsStale(bill, ""); stale {
		t.Fatal("missing snapshot must not be stale")
	}
}
