package payroll

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

const (
	dosukoiNomRate   = 0.20
	dosukoiDohanRate = 0.30

	// Seed fallback when a flagged category carries no
	// payout_fixed_per_item of its own.
	dosukoiFixedPayout = 500
)

// DosukoiAsaEngine implements the dosukoi-asa house rules: a dohan
// stay on the bill suppresses the nomination pool entirely (dohan
// wins), and flagged categories pay a flat amount per item.
type DosukoiAsaEngine struct {
	DefaultEngine
}

// NewDosukoiAsaEngine creates the dosukoi-asa strategy
func NewDosukoiAsaEngine(settings Settings) *DosukoiAsaEngine {
	return &DosukoiAsaEngine{DefaultEngine{settings: settings}}
}

// Name identifies the strategy
func (e *DosukoiAsaEngine) Name() string {
	return "DosukoiAsaEngine"
}

// NominationPayouts pays 20% of the bill subtotal to the main cast, or
// splits it equally among the nominated casts. If any dohan stay
// exists the nomination pool is empty.
func (e *DosukoiAsaEngine) NominationPayouts(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64 {
	out := map[uint]int64{}
	if bill.HasDohanStay() {
		return out
	}

	pool := floorMul(bill.RawSubtotal(), dosukoiNomRate)
	if pool <= 0 {
		return out
	}

	var recipients []uint
	for i := range bill.NominatedCasts {
		recipients = append(recipients, bill.NominatedCasts[i].ID)
	}
	if len(recipients) == 0 && bill.MainCastID != nil {
		recipients = []uint{*bill.MainCastID}
	}
	if len(recipients) == 0 {
		return out
	}

	share := floorSplit(pool, len(recipients))
	if share <= 0 {
		return out
	}
	for _, id := range recipients {
		out[id] += share
	}
	return out
}

// DohanPayouts pays 30% of the bill subtotal, split equally among the
// casts that entered on dohan.
func (e *DosukoiAsaEngine) DohanPayouts(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64 {
	out := map[uint]int64{}
	casts := bill.DohanCastIDs()
	if len(casts) == 0 {
		return out
	}

	pool := floorMul(bill.RawSubtotal(), dosukoiDohanRate)
	if pool <= 0 {
		return out
	}
	share := floorSplit(pool, len(casts))
	if share <= 0 {
		return out
	}
	for _, id := range casts {
		out[id] += share
	}
	return out
}

// ItemPayoutOverride pays a fixed amount per item for flagged
// categories on free and in-house lines. The category's own
// payout_fixed_per_item wins over the seed fallback.
func (e *DosukoiAsaEngine) ItemPayoutOverride(bill *entity.Bill, item *entity.BillItem, stay enum.StayType) (int64, bool) {
	if stay != enum.StayFree && stay != enum.StayInHouse {
		return 0, false
	}
	cat := item.Category()
	if cat == nil || !cat.UseFixedPayoutFreeIn {
		return 0, false
	}
	per := int64(dosukoiFixedPayout)
	if cat.PayoutFixedPerItem != nil {
		per = *cat.PayoutFixedPerItem
	}
	return per * int64(item.Qty), true
}
