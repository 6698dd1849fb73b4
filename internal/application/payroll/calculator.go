package payroll

import (
	"fmt"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// PriceResult is the output of the pricing pipeline
type PriceResult struct {
	RawSubtotal   int64
	Subtotal      int64
	ServiceCharge int64
	Tax           int64
	GrandTotal    int64
}

// ApplyDiscount applies a discount rule to a subtotal, clamped at zero
func ApplyDiscount(raw int64, rule *entity.DiscountRule) int64 {
	if rule == nil {
		return raw
	}
	if rule.AmountOff != nil {
		return clampNonNegative(raw - *rule.AmountOff)
	}
	if rule.PercentOff != nil {
		p := NormalizeRate(*rule.PercentOff)
		return clampNonNegative(raw - floorMul(raw, p))
	}
	return raw
}

// Price runs the pricing pipeline:
// raw subtotal -> discount -> service charge -> tax -> grand total.
// The service rate consults a per-seat-type override before the store
// default. All steps floor; the source accepted half-up on the service
// step in places, unified here on floor.
func Price(store *entity.Store, bill *entity.Bill) PriceResult {
	raw := bill.RawSubtotal()
	sub := ApplyDiscount(raw, bill.DiscountRule)

	var svc int64
	if bill.ApplyServiceCharge {
		rate := store.ServiceRate
		if bill.Table.SeatType != nil && bill.Table.SeatType.ServiceRate != nil {
			rate = *bill.Table.SeatType.ServiceRate
		}
		svc = floorMul(sub, NormalizeRate(rate))
	}

	var tax int64
	if bill.ApplyTax {
		tax = floorMul(sub+svc, NormalizeRate(store.TaxRate))
	}

	return PriceResult{
		RawSubtotal:   raw,
		Subtotal:      sub,
		ServiceCharge: svc,
		Tax:           tax,
		GrandTotal:    sub + svc + tax,
	}
}

// PayoutKind is the stream a payout row came from
type PayoutKind string

const (
	KindItemBack       PayoutKind = "item_back"
	KindNominationPool PayoutKind = "nomination_pool"
	KindDohanPool      PayoutKind = "dohan_pool"
	KindAdjustment     PayoutKind = "adjustment"
)

// Basis records how a payout amount was derived
type Basis struct {
	Rate        float64 `json:"rate"`
	Calculation string  `json:"calculation"`
	BasisType   string  `json:"basis_type"`
}

// PayoutRow is one materialized cast payout with its derivation
type PayoutRow struct {
	CastID     uint
	BillItemID *uint
	Kind       PayoutKind
	StayType   enum.StayType
	Label      string
	Amount     int64
	Basis      Basis
}

// CastPayouts combines the three payout streams of a bill: per-item
// commissions, the nomination pool and the dohan pool. Only rows with
// a positive amount are returned. The computation is pure; business
// edge cases yield an empty slice, never an error.
func CastPayouts(store *entity.Store, bill *entity.Bill, eng Engine, now time.Time) []PayoutRow {
	var rows []PayoutRow
	casts := castIndex(bill)

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.IsNomination || item.ExcludeFromPayout {
			continue
		}
		if item.ItemMaster != nil && item.ItemMaster.ExcludeFromPayout {
			continue
		}
		ids := item.AttributedCastIDs()
		if len(ids) == 0 {
			continue
		}

		n := len(ids)
		for _, castID := range ids {
			stay := bill.StayTypeOf(castID)
			amount, basis := itemCommission(store, bill, item, casts[castID], castID, stay, eng)
			if n > 1 {
				// equal split, floored at ¥100; the residue stays
				// with the store, never negative to the cast
				amount = floorTo100(floorSplit(amount, n))
			}
			if amount <= 0 {
				continue
			}
			itemID := item.ID
			rows = append(rows, PayoutRow{
				CastID:     castID,
				BillItemID: &itemID,
				Kind:       KindItemBack,
				StayType:   stay,
				Label:      item.Name,
				Amount:     amount,
				Basis:      basis,
			})
		}
	}

	nomRows := eng.NominationPayouts(store, bill, now)
	for _, castID := range sortedCastIDs(nomRows) {
		amount := nomRows[castID]
		if amount <= 0 {
			continue
		}
		rows = append(rows, PayoutRow{
			CastID:   castID,
			Kind:     KindNominationPool,
			StayType: bill.StayTypeOf(castID),
			Label:    "指名バック",
			Amount:   amount,
			Basis: Basis{
				Rate:        NormalizeRate(store.NomPoolRate),
				Calculation: fmt.Sprintf("nomination pool share: %d", amount),
				BasisType:   string(BasisSubtotal),
			},
		})
	}

	dohanRows := eng.DohanPayouts(store, bill, now)
	for _, castID := range sortedCastIDs(dohanRows) {
		amount := dohanRows[castID]
		if amount <= 0 {
			continue
		}
		rows = append(rows, PayoutRow{
			CastID:   castID,
			Kind:     KindDohanPool,
			StayType: bill.StayTypeOf(castID),
			Label:    "同伴バック",
			Amount:   amount,
			Basis: Basis{
				Calculation: fmt.Sprintf("dohan pool share: %d", amount),
				BasisType:   string(BasisSubtotal),
			},
		})
	}

	return rows
}

// itemCommission computes one cast's full (pre-split) commission on a line
func itemCommission(store *entity.Store, bill *entity.Bill, item *entity.BillItem, cast *entity.Cast, castID uint, stay enum.StayType, eng Engine) (int64, Basis) {
	if fixed, ok := eng.ItemPayoutOverride(bill, item, stay); ok {
		return fixed, Basis{
			Calculation: fmt.Sprintf("fixed × %d", item.Qty),
			BasisType:   "fixed",
		}
	}

	base, basisType, _ := PayoutBase(item)
	var category *entity.ItemCategory
	if item.ItemMaster != nil {
		category = item.ItemMaster.Category
	}
	rate := ResolveBackRate(store, category, cast, stay)
	return floorMul(base, rate), Basis{
		Rate:        rate,
		Calculation: fmt.Sprintf("%d × %.4f", base, rate),
		BasisType:   string(basisType),
	}
}

// castIndex collects every cast entity reachable from the bill so the
// resolver can see per-cast overrides without extra queries.
func castIndex(bill *entity.Bill) map[uint]*entity.Cast {
	idx := make(map[uint]*entity.Cast)
	add := func(c *entity.Cast) {
		if c != nil && c.ID != 0 {
			if _, ok := idx[c.ID]; !ok {
				idx[c.ID] = c
			}
		}
	}
	add(bill.MainCast)
	for i := range bill.NominatedCasts {
		add(&bill.NominatedCasts[i])
	}
	for i := range bill.CastStays {
		add(&bill.CastStays[i].Cast)
	}
	for i := range bill.Items {
		for j := range bill.Items[i].ServedByCasts {
			add(&bill.Items[i].ServedByCasts[j])
		}
	}
	return idx
}

// ResolveStoreID resolves the owning store of a bill: through its
// table, else through any item master, else through a nominated cast.
// The second return is false when no path resolves, which aborts
// settlement upstream.
func ResolveStoreID(bill *entity.Bill) (uint, bool) {
	if bill.Table.StoreID != 0 {
		return bill.Table.StoreID, true
	}
	for i := range bill.Items {
		if m := bill.Items[i].ItemMaster; m != nil && m.StoreID != 0 {
			return m.StoreID, true
		}
	}
	for i := range bill.NominatedCasts {
		if bill.NominatedCasts[i].StoreID != 0 {
			return bill.NominatedCasts[i].StoreID, true
		}
	}
	if bill.MainCast != nil && bill.MainCast.StoreID != 0 {
		return bill.MainCast.StoreID, true
	}
	return 0, false
}
