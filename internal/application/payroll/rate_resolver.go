package payroll

import (
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// ResolveBackRate resolves the commission rate for a (store, category,
// cast, stay-type) tuple. Precedence, highest wins:
//
//  1. per-cast x category override row, field matching the stay type
//  2. per-cast stay-type override field (no dohan override exists)
//  3. category field matching the stay type (free/nomination/inhouse)
//  4. store default for the stay type (all four stay types)
//  5. zero
//
// Category and cast may be nil; the chain simply skips them. The
// returned rate is always a fraction in [0,1].
func ResolveBackRate(store *entity.Store, category *entity.ItemCategory, cast *entity.Cast, stay enum.StayType) float64 {
	if cast != nil && category != nil {
		for i := range cast.CategoryRates {
			ccr := &cast.CategoryRates[i]
			if ccr.ItemCategoryCode != category.Code {
				continue
			}
			if rate, ok := ccr.Rate(stay); ok {
				return NormalizeRate(rate)
			}
		}
	}

	if cast != nil {
		if rate, ok := cast.OverrideBackRate(stay); ok {
			return NormalizeRate(rate)
		}
	}

	if category != nil {
		if rate, ok := category.BackRate(stay); ok {
			return NormalizeRate(rate)
		}
	}

	if store != nil {
		if rate := store.DefaultBackRate(stay); rate > 0 {
			return NormalizeRate(rate)
		}
	}

	return 0
}
