package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
)

// csvHeader is the fixed 17-column payroll export layout
var csvHeader = []string{
	"名前", "時給合計", "バック合計", "給与合計", "区分",
	"出勤", "退勤", "勤務時間(h)", "時給", "時給給与",
	"伝票ID", "注文ID", "品目", "単価", "個数", "小計", "バック",
}

const (
	rowKindAttendance = "出勤日時"
	rowKindSales      = "売上"
)

// PayrollRunService assembles payroll runs over a store's cutoff
// period and renders them as the fixed-layout CSV the accounting side
// imports
type PayrollRunService struct {
	runRepo        repository.PayrollRunRepository
	billRepo       repository.BillRepository
	castRepo       repository.CastRepository
	attendanceRepo repository.AttendanceRepository
	storeRepo      repository.StoreRepository
	txManager      repository.TxManager
	settings       payroll.Settings
}

// NewPayrollRunService creates a new payroll run service
func NewPayrollRunService(
	runRepo repository.PayrollRunRepository,
	billRepo repository.BillRepository,
	castRepo repository.CastRepository,
	attendanceRepo repository.AttendanceRepository,
	storeRepo repository.StoreRepository,
	txManager repository.TxManager,
	settings payroll.Settings,
) *PayrollRunService {
	return &PayrollRunService{
		runRepo:        runRepo,
		billRepo:       billRepo,
		castRepo:       castRepo,
		attendanceRepo: attendanceRepo,
		storeRepo:      storeRepo,
		txManager:      txManager,
		settings:       settings,
	}
}

// attendanceDetail backs one 出勤日時 row
type attendanceDetail struct {
	ClockIn  time.Time
	ClockOut *time.Time
	Minutes  int
	Wage     int64
	Pay      int64
}

// salesDetail backs one 売上 row
type salesDetail struct {
	BillID     uint
	BillItemID *uint
	Label      string
	UnitPrice  int64
	Qty        int
	Subtotal   int64
	Amount     int64
}

// castAccumulator collects one cast's period data before finalize
type castAccumulator struct {
	line        payroll.PayrollLine
	attendances []attendanceDetail
	sales       []salesDetail
	dohanBills  map[uint]bool
	nomBills    map[uint]bool
}

// CreateRun builds and persists a payroll run for the period
// containing ref. At most one run may cover any given day, enforced by
// overlap detection against earlier runs.
func (s *PayrollRunService) CreateRun(ctx context.Context, storeID uint, ref time.Time, exportedBy uint) (*entity.PayrollRun, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}

	periodStart, periodEnd := payroll.PeriodFor(store, ref)

	overlapping, err := s.runRepo.CountOverlapping(ctx, periodStart, periodEnd, 0)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, apperror.NewConflictError("A payroll run already covers part of this period")
	}

	accs, err := s.accumulate(ctx, store, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	eng := payroll.ForStore(store.Slug, s.settings)

	run := &entity.PayrollRun{
		StoreID:     storeID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		ExportedAt:  time.Now(),
		ExportedBy:  exportedBy,
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.runRepo.Create(ctx, run); err != nil {
			return err
		}

		for _, acc := range accs {
			extra := eng.FinalizePayrollLine(&acc.line, periodStart, periodEnd)
			for _, row := range extra {
				acc.line.BackTotal += row.Amount
				acc.sales = append(acc.sales, salesDetail{Label: row.Label, Amount: row.Amount})
			}

			line := entity.PayrollRunLine{
				PayrollRunID: run.ID,
				CastID:       acc.line.CastID,
				CastName:     acc.line.CastName,
				HourlyTotal:  acc.line.HourlyTotal,
				BackTotal:    acc.line.BackTotal,
				GrandTotal:   acc.line.HourlyTotal + acc.line.BackTotal,
				WorkedMin:    acc.line.WorkedMin,
			}
			if err := s.runRepo.CreateLines(ctx, []entity.PayrollRunLine{line}); err != nil {
				return err
			}

			backRows := make([]entity.PayrollRunBackRow, 0, len(acc.sales))
			for _, sd := range acc.sales {
				var billID *uint
				if sd.BillID != 0 {
					id := sd.BillID
					billID = &id
				}
				backRows = append(backRows, entity.PayrollRunBackRow{
					PayrollRunLineID: line.ID,
					BillID:           billID,
					BillItemID:       sd.BillItemID,
					Label:            sd.Label,
					UnitPrice:        sd.UnitPrice,
					Qty:              sd.Qty,
					Subtotal:         sd.Subtotal,
					Amount:           sd.Amount,
				})
			}
			if err := s.runRepo.CreateBackRows(ctx, backRows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.runRepo.GetWithLines(ctx, run.ID)
}

// accumulate walks the period's attendances and closed-bill snapshots
// into per-cast accumulators, ordered by cast name
func (s *PayrollRunService) accumulate(ctx context.Context, store *entity.Store, periodStart, periodEnd time.Time) ([]*castAccumulator, error) {
	// periodEnd is the last covered day; query up to the next midnight
	qEnd := periodEnd.AddDate(0, 0, 1)

	byCast := make(map[uint]*castAccumulator)
	acc := func(castID uint) (*castAccumulator, error) {
		if a, ok := byCast[castID]; ok {
			return a, nil
		}
		cast, err := s.castRepo.GetByID(ctx, castID)
		if err != nil {
			return nil, err
		}
		a := &castAccumulator{
			dohanBills: make(map[uint]bool),
			nomBills:   make(map[uint]bool),
		}
		a.line.CastID = castID
		if cast != nil {
			a.line.CastName = cast.Name
			a.line.HourlyWage = cast.HourlyWage
		}
		byCast[castID] = a
		return a, nil
	}

	attendances, err := s.attendanceRepo.ListBetween(ctx, periodStart, qEnd)
	if err != nil {
		return nil, err
	}
	for _, att := range attendances {
		a, err := acc(att.CastID)
		if err != nil {
			return nil, err
		}
		minutes := att.WorkedMinutes()
		pay := att.HourlyWage * int64(minutes) / 60
		a.line.WorkedMin += minutes
		a.line.HourlyTotal += pay
		if att.HourlyWage > 0 {
			a.line.HourlyWage = att.HourlyWage
		}
		a.attendances = append(a.attendances, attendanceDetail{
			ClockIn:  att.ClockInAt,
			ClockOut: att.ClockOutAt,
			Minutes:  minutes,
			Wage:     att.HourlyWage,
			Pay:      pay,
		})
	}

	bills, err := s.billRepo.ListClosedBetween(ctx, periodStart, qEnd)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bill := &bills[i]
		snap, err := payroll.ParseSnapshot(bill.PayrollSnapshot)
		if err != nil || snap == nil {
			continue
		}

		for _, item := range snap.Items {
			for _, eff := range item.PayrollEffects {
				a, err := acc(eff.CastID)
				if err != nil {
					return nil, err
				}
				itemID := item.BillItemID
				a.line.BackTotal += eff.Amount
				a.line.Sales += item.Subtotal
				a.sales = append(a.sales, salesDetail{
					BillID:     bill.ID,
					BillItemID: &itemID,
					Label:      item.Name,
					UnitPrice:  item.UnitPrice,
					Qty:        item.Qty,
					Subtotal:   item.Subtotal,
					Amount:     eff.Amount,
				})
			}
		}

		for _, sc := range snap.ByCast {
			for _, row := range sc.Breakdown {
				kind := payroll.PayoutKind(row.Type)
				if kind != payroll.KindNominationPool && kind != payroll.KindDohanPool && kind != payroll.KindAdjustment {
					continue
				}
				a, err := acc(sc.CastID)
				if err != nil {
					return nil, err
				}
				a.line.BackTotal += row.Amount
				a.sales = append(a.sales, salesDetail{
					BillID: bill.ID,
					Label:  row.Label,
					Amount: row.Amount,
				})
				switch kind {
				case payroll.KindNominationPool:
					if !a.nomBills[bill.ID] {
						a.nomBills[bill.ID] = true
						a.line.NomCount++
					}
				case payroll.KindDohanPool:
					if !a.dohanBills[bill.ID] {
						a.dohanBills[bill.ID] = true
						a.line.DohanCount++
						a.line.DohanSales += bill.Total
					}
				}
			}
		}
	}

	accs := make([]*castAccumulator, 0, len(byCast))
	for _, a := range byCast {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool {
		if accs[i].line.CastName != accs[j].line.CastName {
			return accs[i].line.CastName < accs[j].line.CastName
		}
		return accs[i].line.CastID < accs[j].line.CastID
	})
	return accs, nil
}

// GetRun returns a run with its lines and back rows
func (s *PayrollRunService) GetRun(ctx context.Context, id uint) (*entity.PayrollRun, error) {
	run, err := s.runRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperror.NewNotFoundError("Payroll run")
	}
	return run, nil
}

// ListRuns lists the store's runs, newest first
func (s *PayrollRunService) ListRuns(ctx context.Context) ([]entity.PayrollRun, error) {
	return s.runRepo.List(ctx)
}

// DeleteRun removes a run so the period can be re-exported
func (s *PayrollRunService) DeleteRun(ctx context.Context, id uint) error {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return apperror.NewNotFoundError("Payroll run")
	}
	return s.runRepo.Delete(ctx, id)
}

// ExportCSV renders a persisted run as UTF-8 CSV with a BOM. Layout:
// per cast a summary row, then attendance rows, then sales rows, then
// one blank separator row.
func (s *PayrollRunService) ExportCSV(ctx context.Context, id uint) ([]byte, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	// Re-read attendances so the 出勤日時 rows reflect the exported
	// period even when the run row predates later attendance edits
	qEnd := run.PeriodEnd.AddDate(0, 0, 1)

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for i := range run.Lines {
		line := &run.Lines[i]

		if err := w.Write(summaryRow(line)); err != nil {
			return nil, err
		}

		attendances, err := s.attendanceRepo.ListByCastBetween(ctx, line.CastID, run.PeriodStart, qEnd)
		if err != nil {
			return nil, err
		}
		for _, att := range attendances {
			if err := w.Write(attendanceRow(&att)); err != nil {
				return nil, err
			}
		}

		for j := range line.BackRows {
			if err := w.Write(salesRow(&line.BackRows[j])); err != nil {
				return nil, err
			}
		}

		if err := w.Write(make([]string, len(csvHeader))); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryRow(line *entity.PayrollRunLine) []string {
	row := make([]string, len(csvHeader))
	row[0] = line.CastName
	row[1] = strconv.FormatInt(line.HourlyTotal, 10)
	row[2] = strconv.FormatInt(line.BackTotal, 10)
	row[3] = strconv.FormatInt(line.GrandTotal, 10)
	return row
}

func attendanceRow(att *entity.CastAttendance) []string {
	row := make([]string, len(csvHeader))
	row[4] = rowKindAttendance
	row[5] = att.ClockInAt.Format("2006-01-02 15:04")
	if att.ClockOutAt != nil {
		row[6] = att.ClockOutAt.Format("2006-01-02 15:04")
	}
	minutes := att.WorkedMinutes()
	row[7] = fmt.Sprintf("%.2f", float64(minutes)/60)
	row[8] = strconv.FormatInt(att.HourlyWage, 10)
	row[9] = strconv.FormatInt(att.HourlyWage*int64(minutes)/60, 10)
	return row
}

func salesRow(back *entity.PayrollRunBackRow) []string {
	row := make([]string, len(csvHeader))
	row[4] = rowKindSales
	if back.BillID != nil {
		row[10] = strconv.FormatUint(uint64(*back.BillID), 10)
	}
	if back.BillItemID != nil {
		row[11] = strconv.FormatUint(uint64(*back.BillItemID), 10)
	}
	row[12] = back.Label
	if back.Qty > 0 {
		row[13] = strconv.FormatInt(back.UnitPrice, 10)
		row[14] = strconv.Itoa(back.Qty)
		row[15] = strconv.FormatInt(back.Subtotal, 10)
	}
	row[16] = strconv.FormatInt(back.Amount, 10)
	return row
}
