package repository

import (
	"context"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
)

// CastRepository persists casts and their per-category rate overrides
type CastRepository interface {
	Create(ctx context.Context, cast *entity.Cast) error
	GetByID(ctx context.Context, id uint) (*entity.Cast, error)
	GetByUserID(ctx context.Context, userID uint) (*entity.Cast, error)
	Update(ctx context.Context, cast *entity.Cast) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Cast, int64, error)
	UpsertCategoryRate(ctx context.Context, rate *entity.CastCategoryRate) error
	DeleteCategoryRate(ctx context.Context, castID uint, categoryCode string) error
}

// AttendanceRepository persists clock in/out records
type AttendanceRepository interface {
	Create(ctx context.Context, att *entity.CastAttendance) error
	GetByID(ctx context.Context, id uint) (*entity.CastAttendance, error)
	GetOpen(ctx context.Context, castID uint) (*entity.CastAttendance, error)
	Update(ctx context.Context, att *entity.CastAttendance) error
	ListByCastBetween(ctx context.Context, castID uint, from, to time.Time) ([]entity.CastAttendance, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.CastAttendance, error)
}

// DailySummaryRepository persists the per-cast per-business-day rollup
type DailySummaryRepository interface {
	Upsert(ctx context.Context, summary *entity.CastDailySummary) error
	ListByCastBetween(ctx context.Context, castID uint, from, to time.Time) ([]entity.CastDailySummary, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.CastDailySummary, error)
}
