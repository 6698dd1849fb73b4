package payroll

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// BusinessDay maps a wall-clock instant onto the store's business
// date: anything before the cutoff hour still belongs to the previous
// calendar day.
func BusinessDay(store *entity.Store, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() < store.BusinessDayCutoffHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// PeriodFor returns the store's payroll period containing the
// reference date, as inclusive [start, end] dates.
func PeriodFor(store *entity.Store, ref time.Time) (time.Time, time.Time) {
	loc := ref.Location()
	y, m, d := ref.Date()

	if store.PayrollCutoffKind == enum.CutoffDayOfMonth && store.PayrollCutoffDay > 0 {
		cut := store.PayrollCutoffDay
		// period (cut of previous month, cut of this month]
		var start, end time.Time
		if d > cut {
			start = time.Date(y, m, cut+1, 0, 0, 0, 0, loc)
			end = time.Date(y, m+1, cut, 0, 0, 0, 0, loc)
		} else {
			start = time.Date(y, m-1, cut+1, 0, 0, 0, 0, loc)
			end = time.Date(y, m, cut, 0, 0, 0, 0, loc)
		}
		return start, end
	}

	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return start, end
}
