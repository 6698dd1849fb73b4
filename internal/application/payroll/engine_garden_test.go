package payroll

import (
	"testing"
	"time"
)

func gardenPeriod() (time.Time, time.Time) {
	return at("00:00"), at("23:59").AddDate(0, 1, 0)
}

func TestGardenRankPoints(t *testing.T) {
	eng := NewGardenEngine(Settings{})
	cases := []struct {
		name string
		line PayrollLine
		want GardenRank
	}{
		{"A by sales", PayrollLine{Sales: 600_000}, GardenRankA},
		{"A mixed", PayrollLine{Sales: 400_000, NomCount: 10, DohanCount: 5}, GardenRankA},
		{"B", PayrollLine{Sales: 300_000}, GardenRankB},
		{"C", PayrollLine{Sales: 10_000}, GardenRankC},
		{"C by single nomination", PayrollLine{NomCount: 1}, GardenRankC},
		{"D zero", PayrollLine{}, GardenRankD},
	}
	for _, c := range cases {
		if got := eng.RankOf(&c.line); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestGardenFinalizeRecomputesHourly(t *testing.T) {
	eng := NewGardenEngine(Settings{})
	start, end := gardenPeriod()

	line := PayrollLine{
		CastID:      1,
		WorkedMin:   600, // 10h
		HourlyWage:  1000,
		HourlyTotal: 10_000,
		Sales:       600_000, // rank A
	}
	eng.FinalizePayrollLine(&line, start, end)

	if line.HourlyWage != gardenRankWage[GardenRankA] {
		t.Fatalf("hourly wage = %d, want %d", line.HourlyWage, gardenRankWage[GardenRankA])
	}
	if line.HourlyTotal != gardenRankWage[GardenRankA]*10 {
		t.Fatalf("hourly total = %d, want %d", line.HourlyTotal, gardenRankWage[GardenRankA]*10)
	}
}

func TestGardenFinalizeRankASlideBack(t *testing.T) {
	eng := NewGardenEngine(Settings{})
	start, end := gardenPeriod()

	line := PayrollLine{CastID: 1, Sales: 1_200_000}
	rows := eng.FinalizePayrollLine(&line, start, end)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	// 1.2M sales falls in the 8% bucket
	if rows[0].Amount != 96_000 {
		t.Fatalf("slide back = %d, want 96000", rows[0].Amount)
	}
}

func TestGardenFinalizeRankADohanBack(t *testing.T) {
	eng := NewGardenEngine(Settings{})
	start, end := gardenPeriod()

	line := PayrollLine{CastID: 1, Sales: 1_200_000, DohanSales: 800_000}
	rows := eng.FinalizePayrollLine(&line, start, end)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want slide back + dohan back", len(rows))
	}
	if rows[1].Amount != 80_000 {
		t.Fatalf("dohan back = %d, want 80000", rows[1].Amount)
	}

	// below the threshold the dohan back disappears
	line = PayrollLine{CastID: 1, Sales: 1_200_000, DohanSales: 600_000}
	rows = eng.FinalizePayrollLine(&line, start, end)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (no dohan back under ¥700k)", len(rows))
	}
}

func TestGardenFinalizeRankBBack(t *testing.T) {
	eng := NewGardenEngine(Settings{})
	start, end := gardenPeriod()

	line := PayrollLine{CastID: 1, Sales: 300_000}
	rows := eng.FinalizePayrollLine(&line, start, end)
	if len(rows) != 1 || rows[0].Amount != 15_000 {
		t.Fatalf("rank B rows = %+v, want one 5%% row of 15000", rows)
	}
}

func TestGardenFinalizeRankDNoRows(t *testing.T) {
	eng := NewGardenEngine(Settings{})
	start, end := gardenPeriod()

	line := PayrollLine{CastID: 1}
	if rows := eng.FinalizePayrollLine(&line, start, end); len(rows) != 0 {
		t.Fatalf("rank D must add no rows, got %+v", rows)
	}
}

func TestEngineRegistry(t *testing.T) {
	RegisterBuiltins()

	if eng := ForStore("dosukoi-asa", Settings{}); eng.Name() != "DosukoiAsaEngine" {
		t.Fatalf("dosukoi-asa resolved %s", eng.Name())
	}
	if eng := ForStore("garden", Settings{}); eng.Name() != "GardenEngine" {
		t.Fatalf("garden resolved %s", eng.Name())
	}
	if eng := ForStore("unknown-store", Settings{}); eng.Name() != "DefaultEngine" {
		t.Fatalf("fallback resolved %s", eng.Name())
	}
}
