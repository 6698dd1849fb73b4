package payroll

import (
	"time"
)

// GardenRank is the monthly performance rank at the garden store
type GardenRank string

const (
	GardenRankA GardenRank = "A"
	GardenRankB GardenRank = "B"
	GardenRankC GardenRank = "C"
	GardenRankD GardenRank = "D"
)

// gardenRankWage is the hourly wage granted per rank
var gardenRankWage = map[GardenRank]int64{
	GardenRankA: 3000,
	GardenRankB: 2500,
	GardenRankC: 2000,
	GardenRankD: 1800,
}

// gardenSlideBuckets maps monthly sales to the rank-A slide-back rate,
// highest bucket first.
var gardenSlideBuckets = []struct {
	MinSales int64
	Rate     float64
}{
	{5_000_000, 0.12},
	{3_000_000, 0.10},
	{1_000_000, 0.08},
	{0, 0.05},
}

const (
	gardenDohanBackRate      = 0.10
	gardenDohanBackThreshold = 700_000
	gardenRankBBackRate      = 0.05
)

// GardenEngine overlays the default engine with garden's monthly
// rank system: hourly pay is recomputed from the rank table and
// rank-scaled back rows are appended at payroll-run export.
type GardenEngine struct {
	DefaultEngine
}

// NewGardenEngine creates the garden strategy
func NewGardenEngine(settings Settings) *GardenEngine {
	return &GardenEngine{DefaultEngine{settings: settings}}
}

// Name identifies the strategy
func (e *GardenEngine) Name() string {
	return "GardenEngine"
}

// RankOf computes the monthly rank from a payroll line.
// points = floor(sales/10000) + nominations + 2 x dohans.
func (e *GardenEngine) RankOf(line *PayrollLine) GardenRank {
	points := line.Sales/10_000 + int64(line.NomCount) + 2*int64(line.DohanCount)
	switch {
	case points >= 60:
		return GardenRankA
	case points >= 30:
		return GardenRankB
	case points >= 1:
		return GardenRankC
	}
	return GardenRankD
}

// FinalizePayrollLine recomputes hourly pay from the rank table and
// adds the rank-scaled monthly back rows.
func (e *GardenEngine) FinalizePayrollLine(line *PayrollLine, periodStart, periodEnd time.Time) []ExtraBackRow {
	rank := e.RankOf(line)

	line.HourlyWage = gardenRankWage[rank]
	line.HourlyTotal = line.HourlyWage * int64(line.WorkedMin) / 60

	var rows []ExtraBackRow
	switch rank {
	case GardenRankA:
		for _, b := range gardenSlideBuckets {
			if line.Sales >= b.MinSales {
				if amount := floorMul(line.Sales, b.Rate); amount > 0 {
					rows = append(rows, ExtraBackRow{Label: "ランクAスライドバック", Amount: amount})
				}
				break
			}
		}
		if line.DohanSales >= gardenDohanBackThreshold {
			if amount := floorMul(line.DohanSales, gardenDohanBackRate); amount > 0 {
				rows = append(rows, ExtraBackRow{Label: "同伴バック", Amount: amount})
			}
		}
	case GardenRankB:
		if amount := floorMul(line.Sales, gardenRankBBackRate); amount > 0 {
			rows = append(rows, ExtraBackRow{Label: "ランクBバック", Amount: amount})
		}
	}
	return rows
}
