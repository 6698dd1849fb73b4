package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/internal/infrastructure/cache"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
)

// DailyPL is one business day's profit and loss for a store. Labor
// comes from the stored payroll snapshots, never from a recomputation.
type DailyPL struct {
	Date       string `json:"date"`
	StoreID    uint   `json:"store_id"`
	GuestCount int    `json:"guest_count"`

	Subtotal   int64 `json:"subtotal"`
	SalesTotal int64 `json:"sales_total"`
	AvgSpend   int64 `json:"avg_spend"`

	DrinkSales     int64 `json:"drink_sales"`
	DrinkQty       int   `json:"drink_qty"`
	DrinkUnitPrice int64 `json:"drink_unit_price"`
	ExtensionQty   int   `json:"extension_qty"`

	VipRatio float64 `json:"vip_ratio"`

	LaborCost       int64 `json:"labor_cost"`
	ItemCost        int64 `json:"item_cost"`
	OperatingProfit int64 `json:"operating_profit"`

	CategoryBreakdown map[string]int64 `json:"category_breakdown,omitempty"`
}

// MonthlyPL rolls up the dailies of one calendar month
type MonthlyPL struct {
	Month  string    `json:"month"`
	Days   []DailyPL `json:"days"`
	Totals DailyPL   `json:"totals"`
}

// PLService aggregates closed bills into daily, monthly and yearly
// profit/loss reports
type PLService struct {
	plRepo    repository.PLRepository
	storeRepo repository.StoreRepository
	cache     cache.ReportCache
	cacheTTL  time.Duration
}

// NewPLService creates a new P/L service
func NewPLService(
	plRepo repository.PLRepository,
	storeRepo repository.StoreRepository,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
) *PLService {
	return &PLService{
		plRepo:    plRepo,
		storeRepo: storeRepo,
		cache:     reportCache,
		cacheTTL:  cacheTTL,
	}
}

// Daily returns one business day's P/L
func (s *PLService) Daily(ctx context.Context, storeID uint, date time.Time, withBreakdown bool) (*DailyPL, error) {
	key := fmt.Sprintf("pl:daily:%d:%s:%t", storeID, date.Format("2006-01-02"), withBreakdown)
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var pl DailyPL
		if err := json.Unmarshal(cached, &pl); err == nil {
			return &pl, nil
		}
	} else if err != nil {
		log.Printf("Warning: P/L cache read failed: %v", err)
	}

	days, err := s.rangeDaily(ctx, storeID, date, date.AddDate(0, 0, 1), withBreakdown)
	if err != nil {
		return nil, err
	}

	pl := &DailyPL{Date: date.Format("2006-01-02"), StoreID: storeID}
	for i := range days {
		if days[i].Date == pl.Date {
			pl = &days[i]
			break
		}
	}

	if payload, err := json.Marshal(pl); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			log.Printf("Warning: P/L cache write failed: %v", err)
		}
	}
	return pl, nil
}

// Monthly returns the dailies of a month plus their roll-up
func (s *PLService) Monthly(ctx context.Context, storeID uint, year int, month time.Month, withBreakdown bool) (*MonthlyPL, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	next := first.AddDate(0, 1, 0)

	days, err := s.rangeDaily(ctx, storeID, first, next, withBreakdown)
	if err != nil {
		return nil, err
	}

	report := &MonthlyPL{
		Month: first.Format("2006-01"),
		Days:  days,
	}
	report.Totals = rollup(storeID, first.Format("2006-01"), days)
	return report, nil
}

// Yearly returns twelve monthly roll-ups
func (s *PLService) Yearly(ctx context.Context, storeID uint, year int) ([]DailyPL, error) {
	months := make([]DailyPL, 0, 12)
	for m := time.January; m <= time.December; m++ {
		monthly, err := s.Monthly(ctx, storeID, year, m, false)
		if err != nil {
			return nil, err
		}
		months = append(months, monthly.Totals)
	}
	return months, nil
}

// rangeDaily aggregates [from, to) calendar days into business-day
// buckets. The window queried from the database is widened by one day
// on each side so bills landing across the cutoff hour are captured.
func (s *PLService) rangeDaily(ctx context.Context, storeID uint, from, to time.Time, withBreakdown bool) ([]DailyPL, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}

	qFrom := from.AddDate(0, 0, -1)
	qTo := to.AddDate(0, 0, 1)

	bills, err := s.plRepo.ListClosedBillRows(ctx, storeID, qFrom, qTo)
	if err != nil {
		return nil, err
	}
	items, err := s.plRepo.ListBillItemAgg(ctx, storeID, qFrom, qTo)
	if err != nil {
		return nil, err
	}
	costs, err := s.plRepo.ListBillCosts(ctx, storeID, qFrom, qTo)
	if err != nil {
		return nil, err
	}

	costByBill := make(map[uint]int64, len(costs))
	for _, c := range costs {
		costByBill[c.BillID] = c.Cost
	}

	inWindow := func(t time.Time) (string, bool) {
		day := payroll.BusinessDay(store, t)
		if day.Before(from) || !day.Before(to) {
			return "", false
		}
		return day.Format("2006-01-02"), true
	}

	buckets := make(map[string]*DailyPL)
	bucket := func(dateKey string) *DailyPL {
		pl, ok := buckets[dateKey]
		if !ok {
			pl = &DailyPL{Date: dateKey, StoreID: storeID}
			if withBreakdown {
				pl.CategoryBreakdown = make(map[string]int64)
			}
			buckets[dateKey] = pl
		}
		return pl
	}

	for _, row := range bills {
		dateKey, ok := inWindow(row.ClosedAt)
		if !ok {
			continue
		}
		pl := bucket(dateKey)
		pl.Subtotal += row.Subtotal
		pl.SalesTotal += row.Total
		pl.ItemCost += costByBill[row.BillID]
		pl.LaborCost += laborFromSnapshot(row.Snapshot)
	}

	vipQty := make(map[string]int)
	for _, row := range items {
		dateKey, ok := inWindow(row.ClosedAt)
		if !ok {
			continue
		}
		pl := bucket(dateKey)

		switch row.CategoryCode {
		case "set", "seat":
			pl.GuestCount += row.Qty
			if strings.HasSuffix(row.MasterCode, "_vip") {
				vipQty[dateKey] += row.Qty
			}
		}
		switch enum.MajorGroup(row.MajorGroup) {
		case enum.GroupDrink:
			pl.DrinkSales += row.Amount
			pl.DrinkQty += row.Qty
		case enum.GroupExtension:
			pl.ExtensionQty += row.Qty
		}
		if withBreakdown && row.CategoryCode != "" {
			pl.CategoryBreakdown[row.CategoryCode] += row.Amount
		}
	}

	days := make([]DailyPL, 0, len(buckets))
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateKey := d.Format("2006-01-02")
		pl, ok := buckets[dateKey]
		if !ok {
			continue
		}
		finalize(pl, vipQty[dateKey])
		days = append(days, *pl)
	}
	return days, nil
}

func finalize(pl *DailyPL, vipQty int) {
	if pl.GuestCount > 0 {
		pl.AvgSpend = pl.SalesTotal / int64(pl.GuestCount)
		pl.VipRatio = float64(vipQty) / float64(pl.GuestCount)
	}
	if pl.DrinkQty > 0 {
		pl.DrinkUnitPrice = pl.DrinkSales / int64(pl.DrinkQty)
	}
	pl.OperatingProfit = pl.SalesTotal - pl.LaborCost - pl.ItemCost
}

func rollup(storeID uint, label string, days []DailyPL) DailyPL {
	total := DailyPL{Date: label, StoreID: storeID}
	var vipWeighted float64
	for _, d := range days {
		total.GuestCount += d.GuestCount
		total.Subtotal += d.Subtotal
		total.SalesTotal += d.SalesTotal
		total.DrinkSales += d.DrinkSales
		total.DrinkQty += d.DrinkQty
		total.ExtensionQty += d.ExtensionQty
		total.LaborCost += d.LaborCost
		total.ItemCost += d.ItemCost
		vipWeighted += d.VipRatio * float64(d.GuestCount)
	}
	if total.GuestCount > 0 {
		total.AvgSpend = total.SalesTotal / int64(total.GuestCount)
		total.VipRatio = vipWeighted / float64(total.GuestCount)
	}
	if total.DrinkQty > 0 {
		total.DrinkUnitPrice = total.DrinkSales / int64(total.DrinkQty)
	}
	total.OperatingProfit = total.SalesTotal - total.LaborCost - total.ItemCost
	return total
}

// laborFromSnapshot pulls totals.labor_total out of a stored snapshot.
// A missing or unreadable snapshot contributes zero; the error is
// logged, not propagated.
func laborFromSnapshot(raw []byte) int64 {
	if len(raw) == 0 {
		return 0
	}
	snap, err := payroll.ParseSnapshot(raw)
	if err != nil {
		log.Printf("Warning: unreadable payroll snapshot skipped in P/L: %v", err)
		return 0
	}
	return snap.Totals.LaborTotal
}
