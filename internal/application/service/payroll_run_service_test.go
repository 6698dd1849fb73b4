package service

import (
	"testing"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

func TestSummaryRowLayout(t *testing.T) {
	line := &entity.PayrollRunLine{
		CastName:    "Rena",
		HourlyTotal: 36000,
		BackTotal:   12400,
		GrandTotal:  48400,
	}

	row := summaryRow(line)
	if len(row) != len(csvHeader) {
		t.Fatalf("row width = %d, want %d", len(row), len(csvHeader))
	}
	if row[0] != "Rena" || row[1] != "36000" || row[2] != "12400" || row[3] != "48400" {
		t.Errorf("unexpected summary columns: %v", row[:4])
	}
	for i := 4; i < len(row); i++ {
		if row[i] != "" {
			t.Errorf("column %d should be empty, got %q", i, row[i])
		}
	}
}

func TestAttendanceRowComputesPay(t *testing.T) {
	in := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	out := in.Add(4*time.Hour + 30*time.Minute)
	att := &entity.CastAttendance{
		ClockInAt:  in,
		ClockOutAt: &out,
		HourlyWage: 2000,
	}

	row := attendanceRow(att)
	if row[4] != rowKindAttendance {
		t.Errorf("kind = %q, want %q", row[4], rowKindAttendance)
	}
	if row[5] != "2026-03-10 20:00" || row[6] != "2026-03-11 00:30" {
		t.Errorf("unexpected clock columns: in=%q out=%q", row[5], row[6])
	}
	if row[7] != "4.50" {
		t.Errorf("hours = %q, want 4.50", row[7])
	}
	// 270 minutes at 2000/h
	if row[9] != "9000" {
		t.Errorf("pay = %q, want 9000", row[9])
	}
}

func TestAttendanceRowOpenShift(t *testing.T) {
	att := &entity.CastAttendance{
		ClockInAt:  time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
		HourlyWage: 2000,
	}

	row := attendanceRow(att)
	if row[6] != "" {
		t.Errorf("clock-out column should be empty, got %q", row[6])
	}
	if row[7] != "0.00" || row[9] != "0" {
		t.Errorf("open shift should earn nothing, got hours=%q pay=%q", row[7], row[9])
	}
}

func TestSalesRowItemBack(t *testing.T) {
	billID := uint(42)
	itemID := uint(7)
	back := &entity.PayrollRunBackRow{
		BillID:     &billID,
		BillItemID: &itemID,
		Label:      "シャンパン白",
		UnitPrice:  30000,
		Qty:        2,
		Subtotal:   60000,
		Amount:     12000,
	}

	row := salesRow(back)
	if row[4] != rowKindSales {
		t.Errorf("kind = %q, want %q", row[4], rowKindSales)
	}
	if row[10] != "42" || row[11] != "7" {
		t.Errorf("id columns = %q/%q", row[10], row[11])
	}
	if row[13] != "30000" || row[14] != "2" || row[15] != "60000" || row[16] != "12000" {
		t.Errorf("amount columns = %v", row[13:17])
	}
}

func TestRunOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}
	run := &entity.PayrollRun{PeriodStart: day(1), PeriodEnd: day(15)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", day(1), day(15), true},
		{"contained", day(5), day(10), true},
		{"shares last day", day(15), day(28), true},
		{"follows", day(16), day(28), false},
		{"precedes", day(1).AddDate(0, -1, 0), day(1).AddDate(0, 0, -1), false},
	}
	for _, tc := range cases {
		if got := run.Overlaps(tc.start, tc.end); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSalesRowPoolShare(t *testing.T) {
	// Pool distributions carry no bill line and no quantity
	back := &entity.PayrollRunBackRow{
		Label:  "指名プール配分",
		Amount: 4500,
	}

	row := salesRow(back)
	if row[10] != "" || row[11] != "" {
		t.Errorf("pool rows must not reference a bill, got %q/%q", row[10], row[11])
	}
	if row[13] != "" || row[14] != "" || row[15] != "" {
		t.Errorf("pool rows must not carry line amounts, got %v", row[13:16])
	}
	if row[16] != "4500" {
		t.Errorf("back amount = %q, want 4500", row[16])
	}
}
