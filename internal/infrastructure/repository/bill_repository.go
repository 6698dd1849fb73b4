package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	domainRepo "github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

// billStoreScope scopes bills by the store of their table. Bills carry
// no store column themselves.
func billStoreScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skipScope, ok := ctx.Value(SkipStoreScopeKey).(bool); ok && skipScope {
			return db
		}
		storeID, ok := ctx.Value(StoreIDKey).(uint)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("bills.table_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&entity.Table{}).
				Select("id").
				Where("store_id = ?", storeID))
	}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return dbFrom(ctx, r.db).Create(bill).Error
}

func (r *billRepository) GetByID(ctx context.Context, id uint) (*entity.Bill, error) {
	var bill entity.Bill
	err := dbFrom(ctx, r.db).
		Scopes(billStoreScope(ctx)).
		First(&bill, "bills.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) GetWithAll(ctx context.Context, id uint) (*entity.Bill, error) {
	return r.getWithAll(ctx, dbFrom(ctx, r.db), id)
}

// GetWithAllForUpdate locks the bill row. Only valid inside a
// transaction opened through the TxManager.
func (r *billRepository) GetWithAllForUpdate(ctx context.Context, id uint) (*entity.Bill, error) {
	db := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "bills"}})
	return r.getWithAll(ctx, db, id)
}

func (r *billRepository) getWithAll(ctx context.Context, db *gorm.DB, id uint) (*entity.Bill, error) {
	var bill entity.Bill
	err := db.
		Scopes(billStoreScope(ctx)).
		Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("bill_items.id ASC") }).
		Preload("Items.ItemMaster").
		Preload("Items.ItemMaster.Category").
		Preload("Items.ServedByCasts").
		Preload("CastStays").
		Preload("Customers").
		Preload("Nominations").
		Preload("NominatedCasts").
		First(&bill, "bills.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	return dbFrom(ctx, r.db).Save(bill).Error
}

func (r *billRepository) UpdateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	return dbFrom(ctx, r.db).Model(&entity.Bill{}).
		Where("id = ?", id).
		Updates(values).Error
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, error) {
	var bills []entity.Bill

	query := dbFrom(ctx, r.db).Model(&entity.Bill{}).Scopes(billStoreScope(ctx))
	if params != nil {
		if params.TableID != nil {
			query = query.Where("table_id = ?", *params.TableID)
		}
		if params.OpenOnly {
			query = query.Where("closed_at IS NULL")
		}
		if params.From != nil {
			query = query.Where("opened_at >= ?", *params.From)
		}
		if params.To != nil {
			query = query.Where("opened_at < ?", *params.To)
		}
	}

	err := query.Preload("Table").Order("opened_at DESC").Find(&bills).Error
	return bills, err
}

func (r *billRepository) ListOpen(ctx context.Context) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := dbFrom(ctx, r.db).
		Scopes(billStoreScope(ctx)).
		Where("closed_at IS NULL").
		Preload("Table").
		Preload("Items").
		Preload("CastStays").
		Order("opened_at ASC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) ListClosedBetween(ctx context.Context, from, to time.Time) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := dbFrom(ctx, r.db).
		Scopes(billStoreScope(ctx)).
		Where("closed_at >= ? AND closed_at < ?", from, to).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("bill_items.id ASC") }).
		Preload("Items.ItemMaster").
		Preload("Items.ItemMaster.Category").
		Preload("Items.ServedByCasts").
		Preload("CastStays").
		Preload("Customers").
		Preload("Nominations").
		Preload("NominatedCasts").
		Order("closed_at ASC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) ReplaceNominatedCasts(ctx context.Context, bill *entity.Bill, casts []entity.Cast) error {
	return dbFrom(ctx, r.db).Model(bill).Association("NominatedCasts").Replace(casts)
}

type billItemRepository struct {
	db *gorm.DB
}

// NewBillItemRepository creates a new bill item repository
func NewBillItemRepository(db *gorm.DB) domainRepo.BillItemRepository {
	return &billItemRepository{db: db}
}

func (r *billItemRepository) Create(ctx context.Context, item *entity.BillItem) error {
	return dbFrom(ctx, r.db).Create(item).Error
}

func (r *billItemRepository) GetByID(ctx context.Context, id uint) (*entity.BillItem, error) {
	var item entity.BillItem
	err := dbFrom(ctx, r.db).
		Preload("ItemMaster").
		Preload("ItemMaster.Category").
		Preload("ServedByCasts").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *billItemRepository) Update(ctx context.Context, item *entity.BillItem) error {
	return dbFrom(ctx, r.db).Save(item).Error
}

func (r *billItemRepository) UpdateQty(ctx context.Context, id uint, qty int) error {
	return dbFrom(ctx, r.db).Model(&entity.BillItem{}).
		Where("id = ?", id).
		Update("qty", qty).Error
}

func (r *billItemRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Delete(&entity.BillItem{}, "id = ?", id).Error
}

func (r *billItemRepository) DeleteBatch(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Delete(&entity.BillItem{}, "id IN ?", ids).Error
}

func (r *billItemRepository) ReplaceServedByCasts(ctx context.Context, item *entity.BillItem, casts []entity.Cast) error {
	return dbFrom(ctx, r.db).Model(item).Association("ServedByCasts").Replace(casts)
}

type stayRepository struct {
	db *gorm.DB
}

// NewStayRepository creates a new stay repository
func NewStayRepository(db *gorm.DB) domainRepo.StayRepository {
	return &stayRepository{db: db}
}

func (r *stayRepository) CreateStay(ctx context.Context, stay *entity.BillCastStay) error {
	return dbFrom(ctx, r.db).Create(stay).Error
}

func (r *stayRepository) UpdateStay(ctx context.Context, stay *entity.BillCastStay) error {
	return dbFrom(ctx, r.db).Save(stay).Error
}

func (r *stayRepository) OpenStay(ctx context.Context, billID, castID uint) (*entity.BillCastStay, error) {
	var stay entity.BillCastStay
	err := dbFrom(ctx, r.db).
		Where("bill_id = ? AND cast_id = ? AND left_at IS NULL", billID, castID).
		First(&stay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stay, err
}

func (r *stayRepository) ListStays(ctx context.Context, billID uint) ([]entity.BillCastStay, error) {
	var stays []entity.BillCastStay
	err := dbFrom(ctx, r.db).
		Where("bill_id = ?", billID).
		Order("entered_at ASC").
		Find(&stays).Error
	return stays, err
}

func (r *stayRepository) CreateBillCustomer(ctx context.Context, bc *entity.BillCustomer) error {
	return dbFrom(ctx, r.db).Create(bc).Error
}

func (r *stayRepository) UpdateBillCustomer(ctx context.Context, bc *entity.BillCustomer) error {
	return dbFrom(ctx, r.db).Save(bc).Error
}

func (r *stayRepository) GetBillCustomer(ctx context.Context, billID, customerID uint) (*entity.BillCustomer, error) {
	var bc entity.BillCustomer
	err := dbFrom(ctx, r.db).
		Where("bill_id = ? AND customer_id = ?", billID, customerID).
		First(&bc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bc, err
}

func (r *stayRepository) CountBillCustomers(ctx context.Context, billID uint) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&entity.BillCustomer{}).
		Where("bill_id = ?", billID).
		Count(&count).Error
	return count, err
}

func (r *stayRepository) CreateNomination(ctx context.Context, nom *entity.BillCustomerNomination) error {
	return dbFrom(ctx, r.db).Create(nom).Error
}

func (r *stayRepository) UpdateNomination(ctx context.Context, nom *entity.BillCustomerNomination) error {
	return dbFrom(ctx, r.db).Save(nom).Error
}

func (r *stayRepository) GetNomination(ctx context.Context, billID, customerID, castID uint) (*entity.BillCustomerNomination, error) {
	var nom entity.BillCustomerNomination
	err := dbFrom(ctx, r.db).
		Where("bill_id = ? AND customer_id = ? AND cast_id = ?", billID, customerID, castID).
		First(&nom).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &nom, err
}

type castPayoutRepository struct {
	db *gorm.DB
}

// NewCastPayoutRepository creates a new cast payout repository
func NewCastPayoutRepository(db *gorm.DB) domainRepo.CastPayoutRepository {
	return &castPayoutRepository{db: db}
}

func (r *castPayoutRepository) DeleteByBillID(ctx context.Context, billID uint) error {
	return dbFrom(ctx, r.db).Delete(&entity.CastPayout{}, "bill_id = ?", billID).Error
}

func (r *castPayoutRepository) CreateBatch(ctx context.Context, payouts []entity.CastPayout) error {
	if len(payouts) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Create(&payouts).Error
}

func (r *castPayoutRepository) ListByBillID(ctx context.Context, billID uint) ([]entity.CastPayout, error) {
	var payouts []entity.CastPayout
	err := dbFrom(ctx, r.db).
		Where("bill_id = ?", billID).
		Order("id ASC").
		Find(&payouts).Error
	return payouts, err
}

func (r *castPayoutRepository) ListByCastPeriod(ctx context.Context, storeID, castID uint, from, to time.Time) ([]entity.CastPayout, error) {
	var payouts []entity.CastPayout
	err := dbFrom(ctx, r.db).
		Joins("JOIN bills ON bills.id = cast_payouts.bill_id").
		Joins("JOIN tables ON tables.id = bills.table_id").
		Where("tables.store_id = ?", storeID).
		Where("cast_payouts.cast_id = ?", castID).
		Where("bills.closed_at >= ? AND bills.closed_at < ?", from, to).
		Order("cast_payouts.id ASC").
		Find(&payouts).Error
	return payouts, err
}
