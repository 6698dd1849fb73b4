package service

import (
	"testing"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

func TestValidateRate(t *testing.T) {
	cases := []struct {
		rate   float64
		wantOK bool
	}{
		{0, true},
		{0.1, true},
		{0.5, true},
		{1, true},
		{-0.01, false},
		{1.01, false},
		{10, false},
	}
	for _, tc := range cases {
		fe := validateRate("service_rate", tc.rate)
		if ok := fe == nil; ok != tc.wantOK {
			t.Errorf("validateRate(%v) ok = %v, want %v", tc.rate, ok, tc.wantOK)
		}
	}
}

func TestValidateStoreRatesCutoff(t *testing.T) {
	base := func() *entity.Store {
		return &entity.Store{
			ServiceRate:           0.1,
			TaxRate:               0.1,
			PayrollCutoffKind:     enum.CutoffEndOfMonth,
			BusinessDayCutoffHour: 6,
		}
	}

	if err := validateStoreRates(base()); err != nil {
		t.Fatalf("valid store rejected: %v", err)
	}

	s := base()
	s.BusinessDayCutoffHour = 24
	if err := validateStoreRates(s); err == nil {
		t.Error("cutoff hour 24 should be rejected")
	}

	s = base()
	s.PayrollCutoffKind = enum.CutoffDayOfMonth
	s.PayrollCutoffDay = 29
	if err := validateStoreRates(s); err == nil {
		t.Error("cutoff day 29 should be rejected")
	}

	s = base()
	s.PayrollCutoffKind = enum.CutoffDayOfMonth
	s.PayrollCutoffDay = 15
	if err := validateStoreRates(s); err != nil {
		t.Errorf("cutoff day 15 rejected: %v", err)
	}

	s = base()
	s.PayrollCutoffKind = "quarterly"
	if err := validateStoreRates(s); err == nil {
		t.Error("unknown cutoff kind should be rejected")
	}

	s = base()
	s.TaxRate = 1.5
	if err := validateStoreRates(s); err == nil {
		t.Error("tax rate above 1 should be rejected")
	}
}
