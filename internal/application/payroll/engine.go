package payroll

import (
	"sort"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// Settings carries the global feature flags the engines depend on.
// The flags are captured into every snapshot's meta so reading an old
// snapshot never depends on current process state.
type Settings struct {
	UseTimeboxedNomPool bool
}

// PayrollLine is one cast's accumulated line over a payroll period,
// handed to the finalize hook before export. Engines may mutate the
// hourly fields in place and return extra back rows.
type PayrollLine struct {
	CastID      uint
	CastName    string
	WorkedMin   int
	HourlyWage  int64
	HourlyTotal int64
	BackTotal   int64
	Sales       int64
	NomCount    int
	DohanCount  int
	DohanSales  int64
}

// ExtraBackRow is a back row added by an engine's finalize hook
type ExtraBackRow struct {
	Label  string
	Amount int64
}

// Engine is the per-store payroll strategy. The default engine covers
// most behavior; store engines override selectively.
type Engine interface {
	// Name identifies the strategy in snapshot meta
	Name() string

	// NominationPayouts allocates the nomination pool per cast
	NominationPayouts(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64

	// DohanPayouts allocates the dohan pool per cast
	DohanPayouts(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64

	// ItemPayoutOverride returns a fixed per-line amount for free and
	// in-house lines, or false to fall back to base x back-rate.
	ItemPayoutOverride(bill *entity.Bill, item *entity.BillItem, stay enum.StayType) (int64, bool)

	// FinalizePayrollLine runs at payroll-run export, once per line.
	// It may adjust the line in place and return additional back rows.
	FinalizePayrollLine(line *PayrollLine, periodStart, periodEnd time.Time) []ExtraBackRow
}

// Constructor builds an engine for the given settings
type Constructor func(settings Settings) Engine

var registry = map[string]Constructor{}

// Register binds a store slug to an engine constructor. Engines are
// registered explicitly at startup; re-registering a slug replaces the
// previous constructor.
func Register(slug string, c Constructor) {
	registry[slug] = c
}

// RegisterBuiltins registers the store-specific engines that ship with
// the system.
func RegisterBuiltins() {
	Register("dosukoi-asa", func(s Settings) Engine { return NewDosukoiAsaEngine(s) })
	Register("garden", func(s Settings) Engine { return NewGardenEngine(s) })
}

// ForStore resolves the engine for a store slug, falling back to the
// default engine when no specific strategy is registered.
func ForStore(slug string, settings Settings) Engine {
	if c, ok := registry[slug]; ok {
		return c(settings)
	}
	return NewDefaultEngine(settings)
}

// DefaultEngine implements the shared payroll behavior
type DefaultEngine struct {
	settings Settings
}

// NewDefaultEngine creates the default payroll engine
func NewDefaultEngine(settings Settings) *DefaultEngine {
	return &DefaultEngine{settings: settings}
}

// Name identifies the default strategy
func (e *DefaultEngine) Name() string {
	return "DefaultEngine"
}

// NominationPayouts dispatches between the legacy whole-bill pool and
// the time-boxed per-interval pool.
func (e *DefaultEngine) NominationPayouts(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64 {
	if e.settings.UseTimeboxedNomPool {
		return timeboxedNomPool(store, bill, now)
	}
	return legacyNomPool(store, bill)
}

// DohanPayouts is empty by default; store engines override
func (e *DefaultEngine) DohanPayouts(store *entity.Store, bill *entity.Bill, now time.Time) map[uint]int64 {
	return map[uint]int64{}
}

// ItemPayoutOverride applies the category's fixed per-item payout for
// free and in-house lines when configured.
func (e *DefaultEngine) ItemPayoutOverride(bill *entity.Bill, item *entity.BillItem, stay enum.StayType) (int64, bool) {
	if stay != enum.StayFree && stay != enum.StayInHouse {
		return 0, false
	}
	cat := item.Category()
	if cat == nil || !cat.UseFixedPayoutFreeIn || cat.PayoutFixedPerItem == nil {
		return 0, false
	}
	return *cat.PayoutFixedPerItem * int64(item.Qty), true
}

// FinalizePayrollLine is a no-op by default
func (e *DefaultEngine) FinalizePayrollLine(line *PayrollLine, periodStart, periodEnd time.Time) []ExtraBackRow {
	return nil
}

// poolEligible reports whether a line feeds the nomination pool
func poolEligible(item *entity.BillItem) bool {
	if item.ExcludeFromPayout {
		return false
	}
	if cat := item.Category(); cat != nil && cat.ExcludeFromNomPool {
		return false
	}
	return true
}

// sortedCastIDs returns map keys in a stable order; allocation order
// must not leak into split arithmetic or snapshots.
func sortedCastIDs(m map[uint]int64) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
