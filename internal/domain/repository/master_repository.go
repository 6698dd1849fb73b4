package repository

import (
	"context"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
)

// StoreRepository persists stores
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id uint) (*entity.Store, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Store, error)
	Update(ctx context.Context, store *entity.Store) error
	List(ctx context.Context) ([]entity.Store, error)
}

// TableRepository persists tables
type TableRepository interface {
	Create(ctx context.Context, table *entity.Table) error
	GetByID(ctx context.Context, id uint) (*entity.Table, error)
	GetByCode(ctx context.Context, code string) (*entity.Table, error)
	Update(ctx context.Context, table *entity.Table) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.Table, error)
}

// SeatTypeRepository persists seat types
type SeatTypeRepository interface {
	Create(ctx context.Context, seatType *entity.SeatType) error
	GetByID(ctx context.Context, id uint) (*entity.SeatType, error)
	Update(ctx context.Context, seatType *entity.SeatType) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.SeatType, error)
}

// MasterFilterParams filters item-master listings
type MasterFilterParams struct {
	Search       string
	CategoryCode string
	Pagination   pagination.PaginationParams
}

// ItemMasterRepository persists item masters. GetOrCreate converges on
// a single row under race by the unique (store, code) index.
type ItemMasterRepository interface {
	Create(ctx context.Context, master *entity.ItemMaster) error
	GetByID(ctx context.Context, id uint) (*entity.ItemMaster, error)
	GetByCode(ctx context.Context, code string) (*entity.ItemMaster, error)
	GetOrCreate(ctx context.Context, master *entity.ItemMaster) (*entity.ItemMaster, error)
	Update(ctx context.Context, master *entity.ItemMaster) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *MasterFilterParams) ([]entity.ItemMaster, int64, error)
}

// ItemCategoryRepository persists item categories
type ItemCategoryRepository interface {
	Create(ctx context.Context, category *entity.ItemCategory) error
	GetByCode(ctx context.Context, code string) (*entity.ItemCategory, error)
	Update(ctx context.Context, category *entity.ItemCategory) error
	List(ctx context.Context) ([]entity.ItemCategory, error)
}
