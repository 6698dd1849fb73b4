package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/apperror"
)

const (
	maxLineQty   = 99
	maxLinePrice = 2_000_000

	// Overpayment beyond this margin is almost certainly a typo
	overpayTolerance = 10_000_000
)

// BillService handles the bill lifecycle: open, lines, reconciliation,
// close and reopen. The close protocol runs inside one transaction
// under a row lock on the bill.
type BillService struct {
	billRepo     repository.BillRepository
	billItemRepo repository.BillItemRepository
	stayRepo     repository.StayRepository
	payoutRepo   repository.CastPayoutRepository
	storeRepo    repository.StoreRepository
	tableRepo    repository.TableRepository
	masterRepo   repository.ItemMasterRepository
	categoryRepo repository.ItemCategoryRepository
	castRepo     repository.CastRepository
	customerRepo repository.CustomerRepository
	txManager    repository.TxManager
	settings     payroll.Settings
}

// NewBillService creates a new bill service
func NewBillService(
	billRepo repository.BillRepository,
	billItemRepo repository.BillItemRepository,
	stayRepo repository.StayRepository,
	payoutRepo repository.CastPayoutRepository,
	storeRepo repository.StoreRepository,
	tableRepo repository.TableRepository,
	masterRepo repository.ItemMasterRepository,
	categoryRepo repository.ItemCategoryRepository,
	castRepo repository.CastRepository,
	customerRepo repository.CustomerRepository,
	txManager repository.TxManager,
	settings payroll.Settings,
) *BillService {
	return &BillService{
		billRepo:     billRepo,
		billItemRepo: billItemRepo,
		stayRepo:     stayRepo,
		payoutRepo:   payoutRepo,
		storeRepo:    storeRepo,
		tableRepo:    tableRepo,
		masterRepo:   masterRepo,
		categoryRepo: categoryRepo,
		castRepo:     castRepo,
		customerRepo: customerRepo,
		txManager:    txManager,
		settings:     settings,
	}
}

// OpenBillInput represents the open bill input
type OpenBillInput struct {
	TableID    uint
	Pax        int
	MainCastID *uint
}

// OpenBill opens a new bill on a table and seeds one arrived customer
// per head
func (s *BillService) OpenBill(ctx context.Context, input *OpenBillInput) (*entity.Bill, error) {
	table, err := s.tableRepo.GetByID(ctx, input.TableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperror.NewNotFoundError("Table")
	}

	if input.Pax < 1 {
		input.Pax = 1
	}

	bill := &entity.Bill{
		TableID:            table.ID,
		OpenedAt:           time.Now(),
		Pax:                input.Pax,
		ApplyServiceCharge: true,
		ApplyTax:           true,
		MainCastID:         input.MainCastID,
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.billRepo.Create(ctx, bill); err != nil {
			return err
		}
		return s.syncPax(ctx, bill, table.StoreID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, bill.ID)
}

// GetBill returns a bill with all its associations
func (s *BillService) GetBill(ctx context.Context, id uint) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithAll(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills lists bills matching the filter
func (s *BillService) ListBills(ctx context.Context, params *repository.BillFilterParams) ([]entity.Bill, error) {
	return s.billRepo.List(ctx, params)
}

// LineInput represents a manual bill line
type LineInput struct {
	ItemMasterID    uint
	Qty             int
	Price           *int64 // overrides the master's regular price
	OrderedAt       *time.Time
	ServedByCastIDs []uint
	ServedByCastID  *uint // single-cast fallback when the set is empty
	CustomerID      *uint
	IsNomination    bool
	IsInhouse       bool
	IsDohan         bool
}

func (in *LineInput) validate() error {
	var fieldErrors []apperror.FieldError
	if in.Qty < 1 || in.Qty > maxLineQty {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   "qty",
			Message: fmt.Sprintf("must be between 1 and %d", maxLineQty),
		})
	}
	if in.Price != nil && (*in.Price < 0 || *in.Price > maxLinePrice) {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   "price",
			Message: fmt.Sprintf("must be between 0 and %d", maxLinePrice),
		})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// AddLine appends a line to an open bill and recalculates its totals
func (s *BillService) AddLine(ctx context.Context, billID uint, input *LineInput) (*entity.Bill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		master, err := s.masterRepo.GetByID(ctx, input.ItemMasterID)
		if err != nil {
			return err
		}
		if master == nil || master.StoreID != bill.Table.StoreID {
			return apperror.NewNotFoundError("Item")
		}

		casts, err := s.collectCasts(ctx, input.ServedByCastIDs, bill.Table.StoreID)
		if err != nil {
			return err
		}
		if input.ServedByCastID != nil {
			if _, err := s.requireCast(ctx, *input.ServedByCastID, bill.Table.StoreID); err != nil {
				return err
			}
		}
		if input.CustomerID != nil {
			customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil || customer.StoreID != bill.Table.StoreID {
				return apperror.NewNotFoundError("Customer")
			}
		}

		backRate, err := s.resolveLineRate(ctx, bill, master, casts, input.ServedByCastID)
		if err != nil {
			return err
		}

		price := master.PriceRegular
		if input.Price != nil {
			price = *input.Price
		}
		orderedAt := time.Now()
		if input.OrderedAt != nil {
			orderedAt = *input.OrderedAt
		}

		item := &entity.BillItem{
			BillID:         bill.ID,
			ItemMasterID:   &master.ID,
			Name:           master.Name,
			Price:          price,
			Qty:            input.Qty,
			OrderedAt:      orderedAt,
			ServedByCastID: input.ServedByCastID,
			CustomerID:     input.CustomerID,
			BackRate:       backRate,
			IsNomination:   input.IsNomination,
			IsInhouse:      input.IsInhouse,
			IsDohan:        input.IsDohan,
		}
		if err := s.billItemRepo.Create(ctx, item); err != nil {
			return err
		}
		if len(casts) > 0 {
			if err := s.billItemRepo.ReplaceServedByCasts(ctx, item, casts); err != nil {
				return err
			}
		}

		return s.recalcTotals(ctx, billID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// UpdateLineQty changes the quantity of an existing line
func (s *BillService) UpdateLineQty(ctx context.Context, billID, itemID uint, qty int) (*entity.Bill, error) {
	if qty < 1 || qty > maxLineQty {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("qty must be between 1 and %d", maxLineQty))
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		found := false
		for i := range bill.Items {
			if bill.Items[i].ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return apperror.NewNotFoundError("Bill item")
		}

		if err := s.billItemRepo.UpdateQty(ctx, itemID, qty); err != nil {
			return err
		}
		return s.recalcTotals(ctx, billID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// DeleteLine removes a line from an open bill
func (s *BillService) DeleteLine(ctx context.Context, billID, itemID uint) (*entity.Bill, error) {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		found := false
		for i := range bill.Items {
			if bill.Items[i].ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return apperror.NewNotFoundError("Bill item")
		}

		if err := s.billItemRepo.Delete(ctx, itemID); err != nil {
			return err
		}
		return s.recalcTotals(ctx, billID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// SetDiscount attaches a discount rule to an open bill. Passing nil
// clears the discount.
func (s *BillService) SetDiscount(ctx context.Context, billID uint, rule *entity.DiscountRule) (*entity.Bill, error) {
	if rule != nil && !rule.Valid() {
		return nil, apperror.NewBadRequestError("Discount must set exactly one of amount_off or percent_off")
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		var raw interface{}
		if rule != nil {
			payload, err := json.Marshal(rule)
			if err != nil {
				return err
			}
			raw = string(payload)
		}
		if err := s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{"discount_rule": raw}); err != nil {
			return err
		}
		return s.recalcTotals(ctx, billID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// SetChargeFlags toggles service charge and tax on an open bill
func (s *BillService) SetChargeFlags(ctx context.Context, billID uint, applyService, applyTax bool) (*entity.Bill, error) {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		err = s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{
			"apply_service_charge": applyService,
			"apply_tax":            applyTax,
		})
		if err != nil {
			return err
		}
		return s.recalcTotals(ctx, billID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// SetMainCast assigns the main cast of a bill
func (s *BillService) SetMainCast(ctx context.Context, billID uint, castID *uint) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithAll(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if bill.IsClosed() {
		return nil, apperror.NewConflictError("Bill is already closed")
	}

	if castID != nil {
		if _, err := s.requireCast(ctx, *castID, bill.Table.StoreID); err != nil {
			return nil, err
		}
	}
	if err := s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{"main_cast_id": castID}); err != nil {
		return nil, err
	}
	return s.billRepo.GetWithAll(ctx, billID)
}

// ReplaceNominatedCasts replaces the bill-level nominated cast set
func (s *BillService) ReplaceNominatedCasts(ctx context.Context, billID uint, castIDs []uint) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithAll(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if bill.IsClosed() {
		return nil, apperror.NewConflictError("Bill is already closed")
	}

	casts, err := s.collectCasts(ctx, castIDs, bill.Table.StoreID)
	if err != nil {
		return nil, err
	}
	if err := s.billRepo.ReplaceNominatedCasts(ctx, bill, casts); err != nil {
		return nil, err
	}
	return s.billRepo.GetWithAll(ctx, billID)
}

// SetPax updates the head count and creates placeholder customers so
// every head has a presence row. Presences are never removed when pax
// shrinks; the rows keep their arrival history.
func (s *BillService) SetPax(ctx context.Context, billID uint, pax int) (*entity.Bill, error) {
	if pax < 1 {
		return nil, apperror.NewBadRequestError("pax must be at least 1")
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		if err := s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{"pax": pax}); err != nil {
			return err
		}
		bill.Pax = pax
		return s.syncPax(ctx, bill, bill.Table.StoreID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// syncPax tops up bill customers with stubs until their count reaches
// the head count. Stubs arrive now, not at bill open; backdating them
// would start their time charges retroactively.
func (s *BillService) syncPax(ctx context.Context, bill *entity.Bill, storeID uint) error {
	count, err := s.stayRepo.CountBillCustomers(ctx, bill.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := count; i < int64(bill.Pax); i++ {
		stub := &entity.Customer{
			StoreID: storeID,
			Code:    fmt.Sprintf("bill%d-guest%d", bill.ID, i+1),
			Name:    fmt.Sprintf("ゲスト%d", i+1),
			IsStub:  true,
		}
		if err := s.customerRepo.Create(ctx, stub); err != nil {
			return err
		}
		bc := &entity.BillCustomer{
			BillID:     bill.ID,
			CustomerID: stub.ID,
			ArrivedAt:  &now,
		}
		if err := s.stayRepo.CreateBillCustomer(ctx, bc); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile applies the time-charge plan to an open bill: one set line
// per arrived customer plus extension lines sized to the stay so far.
// Reapplying without state changes is a no-op.
func (s *BillService) Reconcile(ctx context.Context, billID uint) (*entity.Bill, error) {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}
		if err := s.applyTimeCharges(ctx, bill, time.Now()); err != nil {
			return err
		}
		return s.recalcTotals(ctx, billID)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// applyTimeCharges executes the reconciliation plan inside the
// caller's transaction
func (s *BillService) applyTimeCharges(ctx context.Context, bill *entity.Bill, now time.Time) error {
	plan := payroll.PlanTimeCharges(bill, now)
	if plan.Empty() {
		return nil
	}

	if len(plan.Delete) > 0 {
		if err := s.billItemRepo.DeleteBatch(ctx, plan.Delete); err != nil {
			return err
		}
	}
	for _, upd := range plan.Update {
		if err := s.billItemRepo.UpdateQty(ctx, upd.BillItemID, upd.Qty); err != nil {
			return err
		}
	}
	for _, pc := range plan.Create {
		master, err := s.autoChargeMaster(ctx, bill.Table.StoreID, pc.MasterCode)
		if err != nil {
			return err
		}
		customerID := pc.CustomerID
		item := &entity.BillItem{
			BillID:            bill.ID,
			ItemMasterID:      &master.ID,
			Name:              master.Name,
			Price:             master.PriceRegular,
			Qty:               pc.Qty,
			OrderedAt:         now,
			CustomerID:        &customerID,
			ExcludeFromPayout: true,
		}
		if err := s.billItemRepo.Create(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// autoChargeMaster returns the store's auto set or extension master,
// creating it on first use
func (s *BillService) autoChargeMaster(ctx context.Context, storeID uint, code string) (*entity.ItemMaster, error) {
	master := &entity.ItemMaster{
		StoreID:           storeID,
		Code:              code,
		ItemCategoryCode:  "set",
		Name:              "セット(60分)",
		DurationMin:       60,
		ExcludeFromPayout: true,
	}
	if code == payroll.AutoExtCode {
		master.ItemCategoryCode = "extension"
		master.Name = "延長(30分)"
		master.DurationMin = 30
	}
	return s.masterRepo.GetOrCreate(ctx, master)
}

// CloseBillInput represents the close bill input
type CloseBillInput struct {
	PaidCash     int64
	PaidCard     int64
	SettledTotal *int64
}

// CloseBill settles a bill. Under one transaction and a row lock it
// reconciles time charges, prices the bill, materializes cast payouts
// and freezes the payroll snapshot. A second close attempt fails
// without touching anything.
func (s *BillService) CloseBill(ctx context.Context, billID uint, input *CloseBillInput) (*entity.Bill, error) {
	now := time.Now()

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.IsClosed() {
			return apperror.NewConflictError("Bill is already closed")
		}

		store, err := s.storeRepo.GetByID(ctx, bill.Table.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return apperror.NewNotFoundError("Store")
		}

		// Step 1: reconcile time charges one last time
		if err := s.applyTimeCharges(ctx, bill, now); err != nil {
			return err
		}
		bill, err = s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}

		// Step 2: price
		price := payroll.Price(store, bill)

		settled := price.GrandTotal
		if input.SettledTotal != nil {
			settled = *input.SettledTotal
		}
		paid := input.PaidCash + input.PaidCard
		if input.PaidCash < 0 || input.PaidCard < 0 || paid > 100_000_000 {
			return apperror.NewBadRequestError("Paid amount is out of range")
		}
		if paid < settled {
			return apperror.NewBadRequestError("Paid amount does not cover the bill")
		}
		if paid > settled+overpayTolerance {
			return apperror.NewBadRequestError("Paid amount exceeds the bill by an implausible margin")
		}

		// Step 3: close open stays and presences at settlement time
		if err := s.endOpenPresences(ctx, bill, now); err != nil {
			return err
		}

		// Step 4: materialize cast payouts
		eng := payroll.ForStore(store.Slug, s.settings)
		rows := payroll.CastPayouts(store, bill, eng, now)
		if err := s.payoutRepo.DeleteByBillID(ctx, bill.ID); err != nil {
			return err
		}
		payouts := make([]entity.CastPayout, 0, len(rows))
		for _, row := range rows {
			payouts = append(payouts, entity.CastPayout{
				BillID:     bill.ID,
				BillItemID: row.BillItemID,
				CastID:     row.CastID,
				Amount:     row.Amount,
				Kind:       string(row.Kind),
			})
		}
		if err := s.payoutRepo.CreateBatch(ctx, payouts); err != nil {
			return err
		}

		// Step 5: freeze the snapshot and mark the bill closed. A bill
		// reopened and closed again keeps its original snapshot; only
		// RegenerateSnapshot replaces one that already exists.
		cols := map[string]interface{}{
			"subtotal":       price.Subtotal,
			"service_charge": price.ServiceCharge,
			"tax":            price.Tax,
			"grand_total":    price.GrandTotal,
			"settled_total":  settled,
			"total":          settled,
			"paid_cash":      input.PaidCash,
			"paid_card":      input.PaidCard,
			"closed_at":      now,
		}
		if len(bill.PayrollSnapshot) == 0 {
			snap := payroll.NewSnapshotBuilder(s.settings).Build(store, bill, eng, rows, price, now)
			raw, err := json.Marshal(snap)
			if err != nil {
				return err
			}
			cols["payroll_snapshot"] = raw
		}

		return s.billRepo.UpdateColumns(ctx, bill.ID, cols)
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

func (s *BillService) endOpenPresences(ctx context.Context, bill *entity.Bill, now time.Time) error {
	for i := range bill.CastStays {
		stay := &bill.CastStays[i]
		if stay.LeftAt == nil {
			stay.LeftAt = &now
			if err := s.stayRepo.UpdateStay(ctx, stay); err != nil {
				return err
			}
		}
	}
	for i := range bill.Customers {
		bc := &bill.Customers[i]
		if bc.LeftAt == nil {
			bc.LeftAt = &now
			if err := s.stayRepo.UpdateBillCustomer(ctx, bc); err != nil {
				return err
			}
		}
	}
	for i := range bill.Nominations {
		nom := &bill.Nominations[i]
		if nom.EndedAt == nil {
			nom.EndedAt = &now
			if err := s.stayRepo.UpdateNomination(ctx, nom); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReopenBill clears the closed mark but keeps the payroll snapshot as
// the compensation of record until the bill is closed again
func (s *BillService) ReopenBill(ctx context.Context, billID uint) (*entity.Bill, error) {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if !bill.IsClosed() {
			return apperror.NewConflictError("Bill is not closed")
		}

		return s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{
			"closed_at": nil,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// RegenerateSnapshot rebuilds the snapshot of a closed bill from
// current data and overwrites the stored one. This is the explicit
// administrative path; nothing regenerates snapshots implicitly.
func (s *BillService) RegenerateSnapshot(ctx context.Context, billID uint) (*entity.Bill, error) {
	now := time.Now()

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetWithAllForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if !bill.IsClosed() {
			return apperror.NewConflictError("Bill is not closed")
		}

		store, err := s.storeRepo.GetByID(ctx, bill.Table.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return apperror.NewNotFoundError("Store")
		}

		eng := payroll.ForStore(store.Slug, s.settings)
		rows := payroll.CastPayouts(store, bill, eng, *bill.ClosedAt)
		price := payroll.Price(store, bill)

		if err := s.payoutRepo.DeleteByBillID(ctx, bill.ID); err != nil {
			return err
		}
		payouts := make([]entity.CastPayout, 0, len(rows))
		for _, row := range rows {
			payouts = append(payouts, entity.CastPayout{
				BillID:     bill.ID,
				BillItemID: row.BillItemID,
				CastID:     row.CastID,
				Amount:     row.Amount,
				Kind:       string(row.Kind),
			})
		}
		if err := s.payoutRepo.CreateBatch(ctx, payouts); err != nil {
			return err
		}

		snap := payroll.NewSnapshotBuilder(s.settings).Build(store, bill, eng, rows, price, now)
		raw, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		return s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{
			"payroll_snapshot": raw,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.billRepo.GetWithAll(ctx, billID)
}

// SnapshotStatus reports whether a closed bill's snapshot still
// matches current data and the current engine generation
type SnapshotStatus struct {
	HasSnapshot bool   `json:"has_snapshot"`
	Dirty       bool   `json:"dirty"`
	Stale       bool   `json:"stale"`
	Note        string `json:"note,omitempty"`
}

// GetSnapshotStatus diagnoses the stored snapshot of a bill
func (s *BillService) GetSnapshotStatus(ctx context.Context, billID uint) (*SnapshotStatus, error) {
	bill, err := s.billRepo.GetWithAll(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if len(bill.PayrollSnapshot) == 0 {
		return &SnapshotStatus{}, nil
	}

	store, err := s.storeRepo.GetByID(ctx, bill.Table.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}

	eng := payroll.ForStore(store.Slug, s.settings)
	builder := payroll.NewSnapshotBuilder(s.settings)

	now := time.Now()
	if bill.ClosedAt != nil {
		now = *bill.ClosedAt
	}

	stale, note := builder.IsStale(bill, eng.Name())
	return &SnapshotStatus{
		HasSnapshot: true,
		Dirty:       builder.IsDirty(store, bill, eng, now),
		Stale:       stale,
		Note:        note,
	}, nil
}

// AddLineAsCast lets a cast order for themselves. The cast must be seated
// on the bill; attribution is forced to the ordering cast.
func (s *BillService) AddLineAsCast(ctx context.Context, billID, userID uint, input *LineInput) (*entity.Bill, error) {
	cast, err := s.castRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cast == nil {
		return nil, apperror.NewNotFoundError("Cast")
	}

	bill, err := s.billRepo.GetWithAll(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	allowed := false
	for i := range bill.CastStays {
		stay := &bill.CastStays[i]
		if stay.CastID == cast.ID && stay.IsOpen() && stay.IsHonshimei {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperror.NewForbiddenError("Cast has no live honshimei stay on this bill")
	}

	input.ServedByCastIDs = []uint{cast.ID}
	return s.AddLine(ctx, billID, input)
}

// recalcTotals reprices the bill from its current lines and refreshes
// the expected-out time. Runs inside the caller's transaction.
func (s *BillService) recalcTotals(ctx context.Context, billID uint) error {
	bill, err := s.billRepo.GetWithAll(ctx, billID)
	if err != nil {
		return err
	}
	if bill == nil {
		return apperror.NewNotFoundError("Bill")
	}

	store, err := s.storeRepo.GetByID(ctx, bill.Table.StoreID)
	if err != nil {
		return err
	}
	if store == nil {
		return apperror.NewNotFoundError("Store")
	}

	price := payroll.Price(store, bill)
	expectedOut := payroll.ExpectedOut(bill)

	return s.billRepo.UpdateColumns(ctx, billID, map[string]interface{}{
		"subtotal":       price.Subtotal,
		"service_charge": price.ServiceCharge,
		"tax":            price.Tax,
		"grand_total":    price.GrandTotal,
		"total":          price.GrandTotal,
		"expected_out":   expectedOut,
	})
}

// resolveLineRate resolves the back rate stored on a new line from the
// first attributed cast's stay on the bill. Settlement re-resolves
// rates per cast; this value is for display.
func (s *BillService) resolveLineRate(ctx context.Context, bill *entity.Bill, master *entity.ItemMaster, casts []entity.Cast, fallbackCastID *uint) (float64, error) {
	store, err := s.storeRepo.GetByID(ctx, bill.Table.StoreID)
	if err != nil {
		return 0, err
	}

	var cast *entity.Cast
	if len(casts) > 0 {
		cast = &casts[0]
	} else if fallbackCastID != nil {
		cast, err = s.castRepo.GetByID(ctx, *fallbackCastID)
		if err != nil {
			return 0, err
		}
	}

	stay := enum.StayFree
	if cast != nil {
		stay = bill.StayTypeOf(cast.ID)
	}
	return payroll.ResolveBackRate(store, master.Category, cast, stay), nil
}

func (s *BillService) collectCasts(ctx context.Context, ids []uint, storeID uint) ([]entity.Cast, error) {
	casts := make([]entity.Cast, 0, len(ids))
	for _, id := range ids {
		cast, err := s.requireCast(ctx, id, storeID)
		if err != nil {
			return nil, err
		}
		casts = append(casts, *cast)
	}
	return casts, nil
}

func (s *BillService) requireCast(ctx context.Context, id, storeID uint) (*entity.Cast, error) {
	cast, err := s.castRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cast == nil || cast.StoreID != storeID {
		return nil, apperror.NewNotFoundError("Cast")
	}
	return cast, nil
}
