package payroll

import (
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

func TestNormalizeRate(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.30, 0.30},
		{0, 0},
		{30, 0.30},
		{1, 0.01},
		{0.999, 0.999},
		{-0.5, 0},
	}
	for _, c := range cases {
		if got := NormalizeRate(c.in); got != c.want {
			t.Errorf("NormalizeRate(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestResolveBackRatePrecedence(t *testing.T) {
	store := testStore()
	cat := drinkCategory()

	cast := &entity.Cast{
		ID:           7,
		StoreID:      1,
		FreeBackRate: float64Ptr(0.35),
		CategoryRates: []entity.CastCategoryRate{
			{
				CastID:           7,
				ItemCategoryCode: "drink",
				FreeBackRate:     float64Ptr(0.50),
			},
		},
	}

	// level 1: cast x category override wins over everything
	if got := ResolveBackRate(store, cat, cast, enum.StayFree); got != 0.50 {
		t.Fatalf("level 1: got %v, want 0.50", got)
	}

	// level 2: cast stay-type override when no category row matches
	other := drinkCategory()
	other.Code = "food"
	if got := ResolveBackRate(store, other, cast, enum.StayFree); got != 0.35 {
		t.Fatalf("level 2: got %v, want 0.35", got)
	}

	// level 3: category rate when the cast has no overrides
	plain := &entity.Cast{ID: 8, StoreID: 1}
	if got := ResolveBackRate(store, cat, plain, enum.StayFree); got != 0.30 {
		t.Fatalf("level 3: got %v, want 0.30", got)
	}

	// level 4: store default when the category carries no rate
	if got := ResolveBackRate(store, cat, plain, enum.StayNom); got != 0.40 {
		t.Fatalf("level 4: got %v, want 0.40", got)
	}

	// level 4: dohan only exists at store level
	if got := ResolveBackRate(store, cat, cast, enum.StayDohan); got != 0.40 {
		t.Fatalf("dohan: got %v, want 0.40", got)
	}

	// level 5: zero when nothing matches
	empty := &entity.Store{ID: 2, Slug: "empty"}
	if got := ResolveBackRate(empty, nil, nil, enum.StayFree); got != 0 {
		t.Fatalf("level 5: got %v, want 0", got)
	}
}

func TestResolveBackRateLowerLevelsHaveNoEffect(t *testing.T) {
	store := testStore()
	cat := drinkCategory()
	cast := &entity.Cast{
		ID: 7,
		CategoryRates: []entity.CastCategoryRate{
			{CastID: 7, ItemCategoryCode: "drink", FreeBackRate: float64Ptr(0.50)},
		},
	}

	base := ResolveBackRate(store, cat, cast, enum.StayFree)

	// mutate every lower level; the result must not move
	cast.FreeBackRate = float64Ptr(0.99)
	cat.FreeBackRate = 0.99
	store.FreeBackRate = 0.99
	if got := ResolveBackRate(store, cat, cast, enum.StayFree); got != base {
		t.Fatalf("lower levels leaked: got %v, want %v", got, base)
	}
}

func TestResolveBackRateNormalizesPercentInputs(t *testing.T) {
	store := testStore()
	cat := drinkCategory()
	cat.FreeBackRate = 30 // legacy percent row

	if got := ResolveBackRate(store, cat, nil, enum.StayFree); got != 0.30 {
		t.Fatalf("got %v, want 0.30", got)
	}
}
