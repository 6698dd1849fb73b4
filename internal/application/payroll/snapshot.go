package payroll

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

// SnapshotVersion is the current payroll snapshot schema version
const SnapshotVersion = 2

// SnapshotMeta describes how and when a snapshot was generated
type SnapshotMeta struct {
	SnapshotVersion     int       `json:"snapshot_version"`
	GeneratedAt         time.Time `json:"generated_at"`
	UseTimeboxedNomPool bool      `json:"use_timeboxed_nom_pool"`
	NomPoolMode         string    `json:"nom_pool_mode"`
	Engine              string    `json:"engine"`
	StoreID             uint      `json:"store_id"`
	StoreSlug           string    `json:"store_slug"`
}

// SnapshotTotals is the only hashed portion of a snapshot
type SnapshotTotals struct {
	Subtotal        int64 `json:"subtotal"`
	ServiceCharge   int64 `json:"service_charge"`
	Tax             int64 `json:"tax"`
	GrandTotal      int64 `json:"grand_total"`
	LaborTotal      int64 `json:"labor_total"`
	NominationTotal int64 `json:"nomination_total"`
	DohanTotal      int64 `json:"dohan_total"`
	ItemTotal       int64 `json:"item_total"`
	// HourlyTotal stays zero at bill close. Hourly pay accrues per
	// attendance day, not per bill, and is settled by the payroll run;
	// the field is part of the hashed schema so runs that do write it
	// (regeneration tooling, imports) stay comparable.
	HourlyTotal int64 `json:"hourly_total"`
}

// BreakdownRow is one component of a cast's compensation
type BreakdownRow struct {
	Type   string `json:"type"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
	Basis  *Basis `json:"basis,omitempty"`
}

// SnapshotCast is one cast's total with its breakdown. The adjustment
// row absorbs any residual so the breakdown always sums to the amount.
type SnapshotCast struct {
	CastID    uint           `json:"cast_id"`
	StayType  string         `json:"stay_type"`
	Amount    int64          `json:"amount"`
	Breakdown []BreakdownRow `json:"breakdown"`
}

// PayrollEffect is one cast's share of a single line
type PayrollEffect struct {
	CastID uint   `json:"cast_id"`
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Basis  Basis  `json:"basis"`
}

// SnapshotItem is one bill line with its payroll effects
type SnapshotItem struct {
	BillItemID     uint            `json:"bill_item_id"`
	Name           string          `json:"name"`
	Qty            int             `json:"qty"`
	UnitPrice      int64           `json:"unit_price"`
	Subtotal       int64           `json:"subtotal"`
	ServedByCastID *uint           `json:"served_by_cast_id,omitempty"`
	StayType       string          `json:"stay_type,omitempty"`
	PayrollEffects []PayrollEffect `json:"payroll_effects"`
}

// Snapshot is the immutable, self-describing compensation-of-record
// document written at bill close.
type Snapshot struct {
	Meta   SnapshotMeta   `json:"meta"`
	Totals SnapshotTotals `json:"totals"`
	ByCast []SnapshotCast `json:"by_cast"`
	Items  []SnapshotItem `json:"items"`
	Hash   string         `json:"hash"`
}

// SnapshotBuilder produces payroll snapshots and the dirty/stale
// predicates over stored ones.
type SnapshotBuilder struct {
	settings Settings
}

// NewSnapshotBuilder creates a snapshot builder for the given settings
func NewSnapshotBuilder(settings Settings) *SnapshotBuilder {
	return &SnapshotBuilder{settings: settings}
}

// Build assembles a snapshot from the bill's payout rows and pricing.
// It never fails on business edge cases; an empty bill produces a
// snapshot of zeros.
func (b *SnapshotBuilder) Build(store *entity.Store, bill *entity.Bill, eng Engine, rows []PayoutRow, price PriceResult, now time.Time) *Snapshot {
	mode := "legacy"
	if b.settings.UseTimeboxedNomPool {
		mode = "timeboxed"
	}

	snap := &Snapshot{
		Meta: SnapshotMeta{
			SnapshotVersion:     SnapshotVersion,
			GeneratedAt:         now,
			UseTimeboxedNomPool: b.settings.UseTimeboxedNomPool,
			NomPoolMode:         mode,
			Engine:              eng.Name(),
			StoreID:             store.ID,
			StoreSlug:           store.Slug,
		},
		Totals: SnapshotTotals{
			Subtotal:      price.Subtotal,
			ServiceCharge: price.ServiceCharge,
			Tax:           price.Tax,
			GrandTotal:    price.GrandTotal,
		},
		ByCast: []SnapshotCast{},
		Items:  []SnapshotItem{},
	}

	perCast := map[uint][]PayoutRow{}
	for _, row := range rows {
		perCast[row.CastID] = append(perCast[row.CastID], row)
		snap.Totals.LaborTotal += row.Amount
		switch row.Kind {
		case KindItemBack:
			snap.Totals.ItemTotal += row.Amount
		case KindNominationPool:
			snap.Totals.NominationTotal += row.Amount
		case KindDohanPool:
			snap.Totals.DohanTotal += row.Amount
		}
	}

	castIDs := make([]uint, 0, len(perCast))
	for id := range perCast {
		castIDs = append(castIDs, id)
	}
	sort.Slice(castIDs, func(i, j int) bool { return castIDs[i] < castIDs[j] })

	for _, castID := range castIDs {
		var entry SnapshotCast
		entry.CastID = castID
		entry.StayType = bill.StayTypeOf(castID).String()
		var breakdownSum int64
		for _, row := range perCast[castID] {
			entry.Amount += row.Amount
			breakdownSum += row.Amount
			basis := row.Basis
			entry.Breakdown = append(entry.Breakdown, BreakdownRow{
				Type:   string(row.Kind),
				Label:  row.Label,
				Amount: row.Amount,
				Basis:  &basis,
			})
		}
		// residual absorber: breakdown must sum to amount exactly
		if residual := entry.Amount - breakdownSum; residual != 0 {
			entry.Breakdown = append(entry.Breakdown, BreakdownRow{
				Type:   string(KindAdjustment),
				Label:  "調整",
				Amount: residual,
			})
		}
		snap.ByCast = append(snap.ByCast, entry)
	}

	itemRows := map[uint][]PayoutRow{}
	for _, row := range rows {
		if row.Kind == KindItemBack && row.BillItemID != nil {
			itemRows[*row.BillItemID] = append(itemRows[*row.BillItemID], row)
		}
	}
	for i := range bill.Items {
		item := &bill.Items[i]
		si := SnapshotItem{
			BillItemID:     item.ID,
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPrice:      item.Price,
			Subtotal:       item.Subtotal(),
			ServedByCastID: item.ServedByCastID,
			PayrollEffects: []PayrollEffect{},
		}
		if item.ServedByCastID != nil {
			si.StayType = bill.StayTypeOf(*item.ServedByCastID).String()
		}
		for _, row := range itemRows[item.ID] {
			si.PayrollEffects = append(si.PayrollEffects, PayrollEffect{
				CastID: row.CastID,
				Type:   string(row.Kind),
				Amount: row.Amount,
				Basis:  row.Basis,
			})
		}
		snap.Items = append(snap.Items, si)
	}

	snap.Hash = HashTotals(snap.Totals)
	return snap
}

// HashTotals computes the snapshot hash over the totals alone: by_cast
// and items are deterministic re-expansions of totals within a
// snapshot version, so only totals enter the hash.
func HashTotals(totals SnapshotTotals) string {
	canonical, err := canonicalJSON(map[string]interface{}{"totals": totals})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// canonicalJSON marshals with lexically sorted keys at every level by
// round-tripping structs through generic maps.
func canonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	// encoding/json sorts map keys on marshal
	return json.Marshal(generic)
}

// IsDirty rebuilds a snapshot from the bill's current state and
// reports whether its hash differs from the stored one. A bill with no
// snapshot is never dirty.
func (b *SnapshotBuilder) IsDirty(store *entity.Store, bill *entity.Bill, eng Engine, now time.Time) bool {
	stored, err := ParseSnapshot(bill.PayrollSnapshot)
	if err != nil || stored == nil {
		return false
	}
	price := Price(store, bill)
	rows := CastPayouts(store, bill, eng, now)
	current := b.Build(store, bill, eng, rows, price, now)
	return stored.Hash != current.Hash
}

// IsStale reports whether a stored snapshot predates the current
// snapshot schema or settings. An engine-class mismatch is surfaced in
// the reason but deliberately does not make the snapshot stale, so
// re-homing a store does not invalidate its history.
func (b *SnapshotBuilder) IsStale(bill *entity.Bill, currentEngine string) (bool, string) {
	if len(bill.PayrollSnapshot) == 0 {
		return false, ""
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(bill.PayrollSnapshot, &shape); err != nil {
		return true, "unreadable snapshot"
	}
	if _, ok := shape["meta"]; !ok {
		return true, "snapshot has no meta"
	}

	snap, err := ParseSnapshot(bill.PayrollSnapshot)
	if err != nil {
		return true, "unreadable snapshot"
	}
	if snap.Meta.SnapshotVersion < SnapshotVersion {
		return true, "snapshot predates version 2"
	}
	if snap.Meta.UseTimeboxedNomPool != b.settings.UseTimeboxedNomPool {
		return true, "nomination pool mode changed"
	}
	if currentEngine != "" && snap.Meta.Engine != currentEngine {
		return false, "engine changed since close"
	}
	return false, ""
}

// ParseSnapshot decodes a stored snapshot document, nil for empty
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
