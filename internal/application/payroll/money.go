package payroll

import "math"

// NormalizeRate coerces legacy percent inputs: any rate >= 1 is
// interpreted as percent and divided by 100. Masters reject values > 1
// at the boundary, so this only fires on legacy imported rows.
func NormalizeRate(rate float64) float64 {
	if rate >= 1 {
		return rate / 100
	}
	if rate < 0 {
		return 0
	}
	return rate
}

// floorMul multiplies a money amount by a fraction, flooring the result
func floorMul(amount int64, rate float64) int64 {
	return int64(math.Floor(float64(amount) * rate))
}

// floorSplit divides an amount equally among n recipients, flooring.
// The residue stays with the store.
func floorSplit(amount int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return amount / int64(n)
}

// floorTo100 floors an amount to the nearest lower ¥100
func floorTo100(amount int64) int64 {
	if amount < 0 {
		return 0
	}
	return amount / 100 * 100
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
