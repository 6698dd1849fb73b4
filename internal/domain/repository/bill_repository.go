package repository

import (
	"context"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

// BillFilterParams filters bill listings
type BillFilterParams struct {
	TableID  *uint
	OpenOnly bool
	From     *time.Time
	To       *time.Time
}

// BillRepository persists bills. GetWithAllForUpdate acquires a
// row-level exclusive lock on the bill and must be called inside a
// transaction; the close protocol runs entirely under that lock.
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uint) (*entity.Bill, error)
	GetWithAll(ctx context.Context, id uint) (*entity.Bill, error)
	GetWithAllForUpdate(ctx context.Context, id uint) (*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
	UpdateColumns(ctx context.Context, id uint, values map[string]interface{}) error
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, error)
	ListOpen(ctx context.Context) ([]entity.Bill, error)
	ListClosedBetween(ctx context.Context, from, to time.Time) ([]entity.Bill, error)
	ReplaceNominatedCasts(ctx context.Context, bill *entity.Bill, casts []entity.Cast) error
}

// BillItemRepository persists bill lines
type BillItemRepository interface {
	Create(ctx context.Context, item *entity.BillItem) error
	GetByID(ctx context.Context, id uint) (*entity.BillItem, error)
	Update(ctx context.Context, item *entity.BillItem) error
	UpdateQty(ctx context.Context, id uint, qty int) error
	Delete(ctx context.Context, id uint) error
	DeleteBatch(ctx context.Context, ids []uint) error
	ReplaceServedByCasts(ctx context.Context, item *entity.BillItem, casts []entity.Cast) error
}

// StayRepository persists cast stays, customer presences and
// nomination intervals on bills.
type StayRepository interface {
	CreateStay(ctx context.Context, stay *entity.BillCastStay) error
	UpdateStay(ctx context.Context, stay *entity.BillCastStay) error
	OpenStay(ctx context.Context, billID, castID uint) (*entity.BillCastStay, error)
	ListStays(ctx context.Context, billID uint) ([]entity.BillCastStay, error)

	CreateBillCustomer(ctx context.Context, bc *entity.BillCustomer) error
	UpdateBillCustomer(ctx context.Context, bc *entity.BillCustomer) error
	GetBillCustomer(ctx context.Context, billID, customerID uint) (*entity.BillCustomer, error)
	CountBillCustomers(ctx context.Context, billID uint) (int64, error)

	CreateNomination(ctx context.Context, nom *entity.BillCustomerNomination) error
	UpdateNomination(ctx context.Context, nom *entity.BillCustomerNomination) error
	GetNomination(ctx context.Context, billID, customerID, castID uint) (*entity.BillCustomerNomination, error)
}

// CastPayoutRepository persists the immutable payout rows. The whole
// set for a bill is deleted and rewritten at close.
type CastPayoutRepository interface {
	DeleteByBillID(ctx context.Context, billID uint) error
	CreateBatch(ctx context.Context, payouts []entity.CastPayout) error
	ListByBillID(ctx context.Context, billID uint) ([]entity.CastPayout, error)
	ListByCastPeriod(ctx context.Context, storeID, castID uint, from, to time.Time) ([]entity.CastPayout, error)
}
