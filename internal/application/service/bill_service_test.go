package service

import (
	"context"
	"testing"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/application/payroll"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
)

// In-memory fakes for the bill lifecycle tests. Each embeds its
// interface and overrides only the methods the exercised paths touch.

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeBillRepo struct {
	repository.BillRepository
	bill    *entity.Bill
	updates []map[string]interface{}
}

func (f *fakeBillRepo) GetWithAll(ctx context.Context, id uint) (*entity.Bill, error) {
	return f.bill, nil
}

func (f *fakeBillRepo) GetWithAllForUpdate(ctx context.Context, id uint) (*entity.Bill, error) {
	return f.bill, nil
}

func (f *fakeBillRepo) UpdateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	f.updates = append(f.updates, values)
	return nil
}

func (f *fakeBillRepo) lastUpdate() map[string]interface{} {
	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

type fakeBillItemRepo struct {
	repository.BillItemRepository
	bill    *entity.Bill
	seq     uint
	created []*entity.BillItem
}

func (f *fakeBillItemRepo) Create(ctx context.Context, item *entity.BillItem) error {
	f.seq++
	item.ID = f.seq
	f.created = append(f.created, item)
	f.bill.Items = append(f.bill.Items, *item)
	return nil
}

func (f *fakeBillItemRepo) ReplaceServedByCasts(ctx context.Context, item *entity.BillItem, casts []entity.Cast) error {
	item.ServedByCasts = casts
	return nil
}

func (f *fakeBillItemRepo) UpdateQty(ctx context.Context, id uint, qty int) error { return nil }
func (f *fakeBillItemRepo) DeleteBatch(ctx context.Context, ids []uint) error     { return nil }

type fakeStayRepo struct {
	repository.StayRepository
	bill *entity.Bill
}

func (f *fakeStayRepo) CountBillCustomers(ctx context.Context, billID uint) (int64, error) {
	return int64(len(f.bill.Customers)), nil
}

func (f *fakeStayRepo) CreateBillCustomer(ctx context.Context, bc *entity.BillCustomer) error {
	f.bill.Customers = append(f.bill.Customers, *bc)
	return nil
}

func (f *fakeStayRepo) UpdateStay(ctx context.Context, stay *entity.BillCastStay) error { return nil }

func (f *fakeStayRepo) UpdateBillCustomer(ctx context.Context, bc *entity.BillCustomer) error {
	return nil
}

func (f *fakeStayRepo) UpdateNomination(ctx context.Context, nom *entity.BillCustomerNomination) error {
	return nil
}

type fakePayoutRepo struct{ repository.CastPayoutRepository }

func (fakePayoutRepo) DeleteByBillID(ctx context.Context, billID uint) error { return nil }

func (fakePayoutRepo) CreateBatch(ctx context.Context, payouts []entity.CastPayout) error {
	return nil
}

type fakeStoreRepo struct {
	repository.StoreRepository
	store *entity.Store
}

func (f *fakeStoreRepo) GetByID(ctx context.Context, id uint) (*entity.Store, error) {
	return f.store, nil
}

type fakeMasterRepo struct {
	repository.ItemMasterRepository
	masters map[uint]*entity.ItemMaster
	seq     uint
}

func (f *fakeMasterRepo) GetByID(ctx context.Context, id uint) (*entity.ItemMaster, error) {
	return f.masters[id], nil
}

func (f *fakeMasterRepo) GetOrCreate(ctx context.Context, master *entity.ItemMaster) (*entity.ItemMaster, error) {
	for _, m := range f.masters {
		if m.StoreID == master.StoreID && m.Code == master.Code {
			return m, nil
		}
	}
	f.seq++
	master.ID = 1000 + f.seq
	f.masters[master.ID] = master
	return master, nil
}

type fakeCastRepo struct {
	repository.CastRepository
	casts map[uint]*entity.Cast
}

func (f *fakeCastRepo) GetByID(ctx context.Context, id uint) (*entity.Cast, error) {
	return f.casts[id], nil
}

type fakeCustomerRepo struct {
	repository.CustomerRepository
	customers map[uint]*entity.Customer
	seq       uint
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	f.seq++
	customer.ID = 100 + f.seq
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomerRepo) GetByID(ctx context.Context, id uint) (*entity.Customer, error) {
	return f.customers[id], nil
}

type billFixture struct {
	svc       *BillService
	bill      *entity.Bill
	billRepo  *fakeBillRepo
	itemRepo  *fakeBillItemRepo
	masters   *fakeMasterRepo
	casts     *fakeCastRepo
	customers *fakeCustomerRepo
}

func openBillFixture() *billFixture {
	store := &entity.Store{
		ID:          1,
		Slug:        "main",
		Name:        "Main",
		ServiceRate: 0.10,
		TaxRate:     0.10,
	}
	bill := &entity.Bill{
		ID:                 1,
		TableID:            1,
		OpenedAt:           time.Now().Add(-2 * time.Hour),
		Pax:                1,
		ApplyServiceCharge: true,
		ApplyTax:           true,
		Table:              entity.Table{ID: 1, StoreID: 1},
	}

	billRepo := &fakeBillRepo{bill: bill}
	itemRepo := &fakeBillItemRepo{bill: bill}
	masters := &fakeMasterRepo{masters: map[uint]*entity.ItemMaster{}}
	casts := &fakeCastRepo{casts: map[uint]*entity.Cast{}}
	customers := &fakeCustomerRepo{customers: map[uint]*entity.Customer{}}

	svc := NewBillService(
		billRepo,
		itemRepo,
		&fakeStayRepo{bill: bill},
		fakePayoutRepo{},
		&fakeStoreRepo{store: store},
		nil,
		masters,
		nil,
		casts,
		customers,
		fakeTx{},
		payroll.Settings{},
	)

	return &billFixture{
		svc:       svc,
		bill:      bill,
		billRepo:  billRepo,
		itemRepo:  itemRepo,
		masters:   masters,
		casts:     casts,
		customers: customers,
	}
}

func (fx *billFixture) seedDrinkMaster(id uint) *entity.ItemMaster {
	master := &entity.ItemMaster{
		ID:               id,
		StoreID:          1,
		Code:             "beer",
		Name:             "ビール",
		PriceRegular:     1000,
		ItemCategoryCode: "drink",
		Category: &entity.ItemCategory{
			Code:               "drink",
			Name:               "ドリンク",
			FreeBackRate:       0.30,
			NominationBackRate: 0.40,
		},
	}
	fx.masters.masters[id] = master
	return master
}

func TestAddLineStoresSingleCastAndCustomer(t *testing.T) {
	fx := openBillFixture()
	fx.seedDrinkMaster(10)
	fx.casts.casts[5] = &entity.Cast{ID: 5, StoreID: 1, Name: "A"}
	fx.customers.customers[7] = &entity.Customer{ID: 7, StoreID: 1, Name: "客"}

	castID, customerID := uint(5), uint(7)
	_, err := fx.svc.AddLine(context.Background(), 1, &LineInput{
		ItemMasterID:   10,
		Qty:            1,
		ServedByCastID: &castID,
		CustomerID:     &customerID,
	})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	if len(fx.itemRepo.created) != 1 {
		t.Fatalf("created %d lines, want 1", len(fx.itemRepo.created))
	}
	item := fx.itemRepo.created[0]
	if item.ServedByCastID == nil || *item.ServedByCastID != 5 {
		t.Fatalf("served_by_cast_id = %v, want 5", item.ServedByCastID)
	}
	if item.CustomerID == nil || *item.CustomerID != 7 {
		t.Fatalf("customer_id = %v, want 7", item.CustomerID)
	}
}

func TestAddLineRejectsForeignCastAndCustomer(t *testing.T) {
	fx := openBillFixture()
	fx.seedDrinkMaster(10)
	fx.casts.casts[5] = &entity.Cast{ID: 5, StoreID: 2, Name: "他店"}

	castID := uint(5)
	_, err := fx.svc.AddLine(context.Background(), 1, &LineInput{
		ItemMasterID:   10,
		Qty:            1,
		ServedByCastID: &castID,
	})
	if err == nil {
		t.Fatal("want error for cast from another store")
	}

	customerID := uint(99)
	_, err = fx.svc.AddLine(context.Background(), 1, &LineInput{
		ItemMasterID: 10,
		Qty:          1,
		CustomerID:   &customerID,
	})
	if err == nil {
		t.Fatal("want error for unknown customer")
	}
}

func TestAddLineResolvesBackRate(t *testing.T) {
	fx := openBillFixture()
	fx.seedDrinkMaster(10)
	fx.casts.casts[5] = &entity.Cast{ID: 5, StoreID: 1, Name: "A"}
	fx.bill.CastStays = []entity.BillCastStay{
		{BillID: 1, CastID: 5, StayType: enum.StayNom, EnteredAt: time.Now().Add(-time.Hour)},
	}

	castID := uint(5)
	_, err := fx.svc.AddLine(context.Background(), 1, &LineInput{
		ItemMasterID:   10,
		Qty:            1,
		ServedByCastID: &castID,
	})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	item := fx.itemRepo.created[0]
	if item.BackRate != 0.40 {
		t.Fatalf("back_rate = %v, want 0.40 (nom rate for the seated cast)", item.BackRate)
	}
}

func TestAddLineBackRateWithoutCastUsesCategory(t *testing.T) {
	fx := openBillFixture()
	fx.seedDrinkMaster(10)

	_, err := fx.svc.AddLine(context.Background(), 1, &LineInput{ItemMasterID: 10, Qty: 2})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	item := fx.itemRepo.created[0]
	if item.BackRate != 0.30 {
		t.Fatalf("back_rate = %v, want 0.30 (free category rate)", item.BackRate)
	}
}

// A bill reopened and closed again must keep its original snapshot.
func TestCloseBillKeepsExistingSnapshot(t *testing.T) {
	fx := openBillFixture()
	fx.bill.PayrollSnapshot = []byte(`{"hash":"deadbeef"}`)

	_, err := fx.svc.CloseBill(context.Background(), 1, &CloseBillInput{})
	if err != nil {
		t.Fatalf("CloseBill: %v", err)
	}

	update := fx.billRepo.lastUpdate()
	if update == nil {
		t.Fatal("no update recorded")
	}
	if _, ok := update["payroll_snapshot"]; ok {
		t.Fatal("re-close must not replace the existing snapshot")
	}
	if _, ok := update["closed_at"]; !ok {
		t.Fatal("close must still set closed_at")
	}
}

func TestCloseBillWritesSnapshotOnFirstClose(t *testing.T) {
	fx := openBillFixture()

	_, err := fx.svc.CloseBill(context.Background(), 1, &CloseBillInput{})
	if err != nil {
		t.Fatalf("CloseBill: %v", err)
	}

	update := fx.billRepo.lastUpdate()
	if _, ok := update["payroll_snapshot"]; !ok {
		t.Fatal("first close must write the snapshot")
	}
}

// Pax stubs arrive when they are added, not at bill open; backdating
// them would start their time charges retroactively.
func TestSetPaxStubsArriveNow(t *testing.T) {
	fx := openBillFixture()

	before := time.Now()
	_, err := fx.svc.SetPax(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("SetPax: %v", err)
	}
	after := time.Now()

	if len(fx.bill.Customers) != 3 {
		t.Fatalf("customers = %d, want 3", len(fx.bill.Customers))
	}
	for i := range fx.bill.Customers {
		bc := &fx.bill.Customers[i]
		if bc.ArrivedAt == nil {
			t.Fatalf("stub %d has no arrival time", i)
		}
		if bc.ArrivedAt.Before(before) || bc.ArrivedAt.After(after) {
			t.Fatalf("stub %d arrived at %v, want between %v and %v", i, bc.ArrivedAt, before, after)
		}
	}
}

// Auto-posted set and extension lines carry the charge but never pay
// out; both the line and its master are flagged.
func TestReconcileMarksAutoLinesPayoutExcluded(t *testing.T) {
	fx := openBillFixture()
	arrived := time.Now().Add(-90 * time.Minute)
	fx.bill.Customers = []entity.BillCustomer{
		{BillID: 1, CustomerID: 7, ArrivedAt: &arrived},
	}

	_, err := fx.svc.Reconcile(context.Background(), 1)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(fx.itemRepo.created) != 2 {
		t.Fatalf("created %d auto lines, want 2 (set + extension)", len(fx.itemRepo.created))
	}
	for _, item := range fx.itemRepo.created {
		if !item.ExcludeFromPayout {
			t.Fatalf("auto line %q is not payout-excluded", item.Name)
		}
	}
	for _, master := range fx.masters.masters {
		if !master.ExcludeFromPayout {
			t.Fatalf("auto master %q is not payout-excluded", master.Code)
		}
	}
}
