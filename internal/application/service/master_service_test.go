package service

import (
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
)

func fieldErrors(t *testing.T, err error) map[string]bool {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		t.Fatalf("expected *apperror.AppError, got %T", err)
	}
	fields := make(map[string]bool)
	for _, fe := range appErr.Errors {
		fields[fe.Field] = true
	}
	return fields
}

func TestCreateItemMasterInputValidate(t *testing.T) {
	valid := CreateItemMasterInput{
		StoreID:      1,
		Code:         "beer",
		Name:         "生ビール",
		PriceRegular: 1000,
		CategoryCode: "drink",
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	bad := CreateItemMasterInput{PriceRegular: -1, DurationMin: -5}
	fields := fieldErrors(t, bad.validate())
	for _, want := range []string{"code", "name", "price_regular", "duration_min", "category_code"} {
		if !fields[want] {
			t.Errorf("missing field error for %s, got %v", want, fields)
		}
	}
}

func TestCategoryInputValidate(t *testing.T) {
	valid := CategoryInput{
		Code:               "champagne",
		Name:               "シャンパン",
		MajorGroup:         enum.GroupChampagne,
		FreeBackRate:       0.1,
		NominationBackRate: 0.2,
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	negFixed := int64(-100)
	bad := CategoryInput{
		Code:               "x",
		Name:               "x",
		MajorGroup:         "liquor",
		InhouseBackRate:    1.5,
		PayoutFixedPerItem: &negFixed,
	}
	fields := fieldErrors(t, bad.validate())
	for _, want := range []string{"major_group", "inhouse_back_rate", "payout_fixed_per_item"} {
		if !fields[want] {
			t.Errorf("missing field error for %s, got %v", want, fields)
		}
	}
}
