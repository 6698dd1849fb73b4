package enum

// PayrollCutoffKind determines how a store's payroll period is cut
type PayrollCutoffKind string

const (
	// CutoffEndOfMonth closes the period on the last day of the calendar month
	CutoffEndOfMonth PayrollCutoffKind = "end_of_month"
	// CutoffDayOfMonth closes the period on a fixed day of the month
	CutoffDayOfMonth PayrollCutoffKind = "day_of_month"
)

// Valid reports whether the cutoff kind is known
func (k PayrollCutoffKind) Valid() bool {
	return k == CutoffEndOfMonth || k == CutoffDayOfMonth
}
