package repository

import (
	"context"
	"errors"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	domainRepo "github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *gorm.DB) domainRepo.StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *entity.Store) error {
	return dbFrom(ctx, r.db).Create(store).Error
}

func (r *storeRepository) GetByID(ctx context.Context, id uint) (*entity.Store, error) {
	var store entity.Store
	err := dbFrom(ctx, r.db).Preload("SeatTypes").First(&store, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &store, err
}

func (r *storeRepository) GetBySlug(ctx context.Context, slug string) (*entity.Store, error) {
	var store entity.Store
	err := dbFrom(ctx, r.db).Preload("SeatTypes").First(&store, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &store, err
}

func (r *storeRepository) Update(ctx context.Context, store *entity.Store) error {
	return dbFrom(ctx, r.db).Save(store).Error
}

func (r *storeRepository) List(ctx context.Context) ([]entity.Store, error) {
	var stores []entity.Store
	err := dbFrom(ctx, r.db).Order("id ASC").Find(&stores).Error
	return stores, err
}

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new table repository
func NewTableRepository(db *gorm.DB) domainRepo.TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *entity.Table) error {
	return dbFrom(ctx, r.db).Create(table).Error
}

func (r *tableRepository) GetByID(ctx context.Context, id uint) (*entity.Table, error) {
	var table entity.Table
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("SeatType").
		First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &table, err
}

func (r *tableRepository) GetByCode(ctx context.Context, code string) (*entity.Table, error) {
	var table entity.Table
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("SeatType").
		First(&table, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &table, err
}

func (r *tableRepository) Update(ctx context.Context, table *entity.Table) error {
	return dbFrom(ctx, r.db).Save(table).Error
}

func (r *tableRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Scopes(StoreScope(ctx)).Delete(&entity.Table{}, "id = ?", id).Error
}

func (r *tableRepository) List(ctx context.Context) ([]entity.Table, error) {
	var tables []entity.Table
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("SeatType").
		Order("code ASC").
		Find(&tables).Error
	return tables, err
}

type seatTypeRepository struct {
	db *gorm.DB
}

// NewSeatTypeRepository creates a new seat type repository
func NewSeatTypeRepository(db *gorm.DB) domainRepo.SeatTypeRepository {
	return &seatTypeRepository{db: db}
}

func (r *seatTypeRepository) Create(ctx context.Context, seatType *entity.SeatType) error {
	return dbFrom(ctx, r.db).Create(seatType).Error
}

func (r *seatTypeRepository) GetByID(ctx context.Context, id uint) (*entity.SeatType, error) {
	var seatType entity.SeatType
	err := dbFrom(ctx, r.db).Scopes(StoreScope(ctx)).First(&seatType, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &seatType, err
}

func (r *seatTypeRepository) Update(ctx context.Context, seatType *entity.SeatType) error {
	return dbFrom(ctx, r.db).Save(seatType).Error
}

func (r *seatTypeRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Scopes(StoreScope(ctx)).Delete(&entity.SeatType{}, "id = ?", id).Error
}

func (r *seatTypeRepository) List(ctx context.Context) ([]entity.SeatType, error) {
	var seatTypes []entity.SeatType
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Order("id ASC").
		Find(&seatTypes).Error
	return seatTypes, err
}

type itemMasterRepository struct {
	db *gorm.DB
}

// NewItemMasterRepository creates a new item master repository
func NewItemMasterRepository(db *gorm.DB) domainRepo.ItemMasterRepository {
	return &itemMasterRepository{db: db}
}

func (r *itemMasterRepository) Create(ctx context.Context, master *entity.ItemMaster) error {
	return dbFrom(ctx, r.db).Create(master).Error
}

func (r *itemMasterRepository) GetByID(ctx context.Context, id uint) (*entity.ItemMaster, error) {
	var master entity.ItemMaster
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("Category").
		First(&master, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &master, err
}

func (r *itemMasterRepository) GetByCode(ctx context.Context, code string) (*entity.ItemMaster, error) {
	var master entity.ItemMaster
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("Category").
		First(&master, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &master, err
}

// GetOrCreate inserts the master and falls back to the existing row on
// the unique (store, code) conflict so concurrent callers converge.
func (r *itemMasterRepository) GetOrCreate(ctx context.Context, master *entity.ItemMaster) (*entity.ItemMaster, error) {
	err := dbFrom(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(master).Error
	if err != nil {
		return nil, err
	}
	if master.ID != 0 {
		return master, nil
	}

	var existing entity.ItemMaster
	err = dbFrom(ctx, r.db).
		Preload("Category").
		First(&existing, "store_id = ? AND code = ?", master.StoreID, master.Code).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *itemMasterRepository) Update(ctx context.Context, master *entity.ItemMaster) error {
	return dbFrom(ctx, r.db).Save(master).Error
}

func (r *itemMasterRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Scopes(StoreScope(ctx)).Delete(&entity.ItemMaster{}, "id = ?", id).Error
}

func (r *itemMasterRepository) List(ctx context.Context, params *domainRepo.MasterFilterParams) ([]entity.ItemMaster, int64, error) {
	var masters []entity.ItemMaster
	var total int64

	query := dbFrom(ctx, r.db).Model(&entity.ItemMaster{}).Scopes(StoreScope(ctx))
	if params.Search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}
	if params.CategoryCode != "" {
		query = query.Where("item_category_code = ?", params.CategoryCode)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Category").
		Order("code ASC").
		Find(&masters).Error

	return masters, total, err
}

type itemCategoryRepository struct {
	db *gorm.DB
}

// NewItemCategoryRepository creates a new item category repository
func NewItemCategoryRepository(db *gorm.DB) domainRepo.ItemCategoryRepository {
	return &itemCategoryRepository{db: db}
}

func (r *itemCategoryRepository) Create(ctx context.Context, category *entity.ItemCategory) error {
	return dbFrom(ctx, r.db).Create(category).Error
}

func (r *itemCategoryRepository) GetByCode(ctx context.Context, code string) (*entity.ItemCategory, error) {
	var category entity.ItemCategory
	err := dbFrom(ctx, r.db).First(&category, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *itemCategoryRepository) Update(ctx context.Context, category *entity.ItemCategory) error {
	return dbFrom(ctx, r.db).Save(category).Error
}

func (r *itemCategoryRepository) List(ctx context.Context) ([]entity.ItemCategory, error) {
	var categories []entity.ItemCategory
	err := dbFrom(ctx, r.db).Order("code ASC").Find(&categories).Error
	return categories, err
}
