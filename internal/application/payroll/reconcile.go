package payroll

import (
	"sort"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// Auto-posted time-charge master codes, one pair per store
const (
	AutoSetCode = "AUTO_SET_60"
	AutoExtCode = "AUTO_EXT_30"

	autoSetMinutes = 60
	autoExtMinutes = 30
	autoExtMaxQty  = 99
)

// PlannedCharge is an auto line to create
type PlannedCharge struct {
	MasterCode string
	CustomerID uint
	Qty        int
}

// ChargeUpdate adjusts an existing auto line's quantity
type ChargeUpdate struct {
	BillItemID uint
	Qty        int
}

// ChargePlan is the idempotent diff between the auto lines a bill has
// and the ones its customer stays require.
type ChargePlan struct {
	Create []PlannedCharge
	Update []ChargeUpdate
	Delete []uint
}

// Empty reports whether applying the plan would change nothing
func (p ChargePlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// PlanTimeCharges computes the reconciliation plan for an open bill:
// per arrived customer, exactly one AUTO_SET_60 line with qty 1 and one
// AUTO_EXT_30 line with qty ceil((stay-60)/30), capped at 99, or none
// when the stay fits in the set. Auto lines tied to customers no
// longer on the bill are deleted. Closed bills must not be planned.
func PlanTimeCharges(bill *entity.Bill, now time.Time) ChargePlan {
	var plan ChargePlan
	if bill.IsClosed() {
		return plan
	}

	// wanted qty per (code, customer); zero means no line
	type key struct {
		code       string
		customerID uint
	}
	wanted := map[key]int{}
	for i := range bill.Customers {
		bc := &bill.Customers[i]
		if bc.ArrivedAt == nil {
			continue
		}
		stay := bc.StayMinutes(now)
		wanted[key{AutoSetCode, bc.CustomerID}] = 1

		over := stay - autoSetMinutes
		if over > 0 {
			qty := (over + autoExtMinutes - 1) / autoExtMinutes
			if qty > autoExtMaxQty {
				qty = autoExtMaxQty
			}
			wanted[key{AutoExtCode, bc.CustomerID}] = qty
		}
	}

	existing := map[key][]*entity.BillItem{}
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ItemMaster == nil {
			continue
		}
		code := item.ItemMaster.Code
		if code != AutoSetCode && code != AutoExtCode {
			continue
		}
		if item.CustomerID == nil {
			// orphaned auto line, drop it
			plan.Delete = append(plan.Delete, item.ID)
			continue
		}
		k := key{code, *item.CustomerID}
		existing[k] = append(existing[k], item)
	}

	for k, items := range existing {
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		qty, ok := wanted[k]
		if !ok || qty == 0 {
			for _, item := range items {
				plan.Delete = append(plan.Delete, item.ID)
			}
			continue
		}
		// keep the first row, delete duplicates
		if items[0].Qty != qty {
			plan.Update = append(plan.Update, ChargeUpdate{BillItemID: items[0].ID, Qty: qty})
		}
		for _, item := range items[1:] {
			plan.Delete = append(plan.Delete, item.ID)
		}
		delete(wanted, k)
	}

	// deterministic order for the remaining creates
	var keys []key
	for k, qty := range wanted {
		if qty > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].customerID != keys[j].customerID {
			return keys[i].customerID < keys[j].customerID
		}
		return keys[i].code < keys[j].code
	})
	for _, k := range keys {
		plan.Create = append(plan.Create, PlannedCharge{
			MasterCode: k.code,
			CustomerID: k.customerID,
			Qty:        wanted[k],
		})
	}

	sort.Slice(plan.Delete, func(i, j int) bool { return plan.Delete[i] < plan.Delete[j] })
	return plan
}

// ExpectedOutMinutes scans the bill lines in id order and returns the
// total expected stay: the duration of the first set line (qty is
// ignored for sets) plus duration x qty for every extension line.
func ExpectedOutMinutes(items []entity.BillItem) int {
	sorted := make([]*entity.BillItem, 0, len(items))
	for i := range items {
		sorted = append(sorted, &items[i])
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	total := 0
	seenSet := false
	for _, item := range sorted {
		m := item.ItemMaster
		if m == nil || m.Category == nil {
			continue
		}
		switch m.Category.MajorGroup {
		case enum.GroupSet:
			if !seenSet {
				total += m.DurationMin
				seenSet = true
			}
		case enum.GroupExtension:
			total += m.DurationMin * item.Qty
		}
	}
	return total
}

// ExpectedOut returns opened_at plus the expected stay, or nil when no
// time charges exist on the bill.
func ExpectedOut(bill *entity.Bill) *time.Time {
	min := ExpectedOutMinutes(bill.Items)
	if min <= 0 {
		return nil
	}
	t := bill.OpenedAt.Add(time.Duration(min) * time.Minute)
	return &t
}
