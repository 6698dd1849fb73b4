package payroll

import (
	"sort"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

// legacyNomPool sums every nomination-flagged, pool-eligible line on
// the bill, applies the store pool rate, and splits the result equally
// among the nominated casts plus the main cast.
func legacyNomPool(store *entity.Store, bill *entity.Bill) map[uint]int64 {
	out := map[uint]int64{}

	var pool int64
	for i := range bill.Items {
		item := &bill.Items[i]
		if !item.IsNomination || !poolEligible(item) {
			continue
		}
		pool += item.Subtotal()
	}
	pool = floorMul(pool, NormalizeRate(store.NomPoolRate))
	if pool <= 0 {
		return out
	}

	recipients := bill.NominationRecipients()
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

// timeboxedNomPool splits each customer's stay into intervals delimited
// by nomination-change events and distributes each interval's item
// subtotal, scaled by the pool rate, to the casts nominated during it.
//
// Items ordered exactly on a boundary belong to the interval that
// starts there, never the one that ends there.
func timeboxedNomPool(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64 {
	out := map[uint]int64{}
	rate := NormalizeRate(store.NomPoolRate)
	if rate <= 0 {
		return out
	}

	for ci := range bill.Customers {
		bc := &bill.Customers[ci]
		if bc.ArrivedAt == nil {
			continue
		}
		start := *bc.ArrivedAt
		end := now
		if bc.LeftAt != nil {
			end = *bc.LeftAt
		}
		if !end.After(start) {
			continue
		}

		var noms []*entity.BillCustomerNomination
		for ni := range bill.Nominations {
			n := &bill.Nominations[ni]
			if n.CustomerID == bc.CustomerID {
				noms = append(noms, n)
			}
		}

		for _, iv := range stayIntervals(start, end, noms) {
			var active []uint
			for _, n := range noms {
				if n.ActiveAt(iv.start) {
					active = append(active, n.CastID)
				}
			}
			if len(active) == 0 {
				continue
			}

			var sub int64
			for ii := range bill.Items {
				item := &bill.Items[ii]
				if !poolEligible(item) {
					continue
				}
				if item.OrderedAt.Before(iv.start) || !item.OrderedAt.Before(iv.end) {
					continue
				}
				sub += item.Subtotal()
			}

			pool := floorMul(sub, rate)
			if pool <= 0 {
				continue
			}
			share := floorSplit(pool, len(active))
			if share <= 0 {
				continue
			}
			sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
			for _, id := range active {
				out[id] += share
			}
		}
	}
	return out
}

type interval struct {
	start, end time.Time
}

// stayIntervals builds the ordered half-open intervals delimited by the
// stay endpoints and every nomination start/end that falls inside them.
func stayIntervals(start, end time.Time, noms []*entity.BillCustomerNomination) []interval {
	bounds := []time.Time{start}
	for _, n := range noms {
		if n.StartedAt.After(start) && n.StartedAt.Before(end) {
			bounds = append(bounds, n.StartedAt)
		}
		if n.EndedAt != nil && n.EndedAt.After(start) && n.EndedAt.Before(end) {
			bounds = append(bounds, *n.EndedAt)
		}
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Before(bounds[j]) })

	var uniq []time.Time
	for _, t := range bounds {
		if len(uniq) == 0 || !t.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, t)
		}
	}

	ivs := make([]interval, 0, len(uniq))
	for i, t := range uniq {
		next := end
		if i+1 < len(uniq) {
			next = uniq[i+1]
		}
		if next.After(t) {
			ivs = append(ivs, interval{start: t, end: next})
		}
	}
	return ivs
}
