package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	domainRepo "github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type castRepository struct {
	db *gorm.DB
}

// NewCastRepository creates a new cast repository
func NewCastRepository(db *gorm.DB) domainRepo.CastRepository {
	return &castRepository{db: db}
}

func (r *castRepository) Create(ctx context.Context, cast *entity.Cast) error {
	return dbFrom(ctx, r.db).Create(cast).Error
}

func (r *castRepository) GetByID(ctx context.Context, id uint) (*entity.Cast, error) {
	var cast entity.Cast
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("CategoryRates").
		First(&cast, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cast, err
}

func (r *castRepository) GetByUserID(ctx context.Context, userID uint) (*entity.Cast, error) {
	var cast entity.Cast
	err := dbFrom(ctx, r.db).
		Preload("CategoryRates").
		First(&cast, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cast, err
}

func (r *castRepository) Update(ctx context.Context, cast *entity.Cast) error {
	return dbFrom(ctx, r.db).Save(cast).Error
}

func (r *castRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Scopes(StoreScope(ctx)).Delete(&entity.Cast{}, "id = ?", id).Error
}

func (r *castRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Cast, int64, error) {
	var casts []entity.Cast
	var total int64

	query := dbFrom(ctx, r.db).Model(&entity.Cast{}).Scopes(StoreScope(ctx))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("CategoryRates").
		Order("name ASC").
		Find(&casts).Error

	return casts, total, err
}

// UpsertCategoryRate writes through the unique (cast, category) index
func (r *castRepository) UpsertCategoryRate(ctx context.Context, rate *entity.CastCategoryRate) error {
	return dbFrom(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cast_id"}, {Name: "item_category_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"free_back_rate", "nomination_back_rate", "inhouse_back_rate", "dohan_back_rate",
			}),
		}).
		Create(rate).Error
}

func (r *castRepository) DeleteCategoryRate(ctx context.Context, castID uint, categoryCode string) error {
	return dbFrom(ctx, r.db).
		Delete(&entity.CastCategoryRate{}, "cast_id = ? AND item_category_code = ?", castID, categoryCode).Error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) domainRepo.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, att *entity.CastAttendance) error {
	return dbFrom(ctx, r.db).Create(att).Error
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uint) (*entity.CastAttendance, error) {
	var att entity.CastAttendance
	err := dbFrom(ctx, r.db).First(&att, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &att, err
}

func (r *attendanceRepository) GetOpen(ctx context.Context, castID uint) (*entity.CastAttendance, error) {
	var att entity.CastAttendance
	err := dbFrom(ctx, r.db).
		Where("cast_id = ? AND clock_out_at IS NULL", castID).
		First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &att, err
}

func (r *attendanceRepository) Update(ctx context.Context, att *entity.CastAttendance) error {
	return dbFrom(ctx, r.db).Save(att).Error
}

func (r *attendanceRepository) ListByCastBetween(ctx context.Context, castID uint, from, to time.Time) ([]entity.CastAttendance, error) {
	var atts []entity.CastAttendance
	err := dbFrom(ctx, r.db).
		Where("cast_id = ? AND clock_in_at >= ? AND clock_in_at < ?", castID, from, to).
		Order("clock_in_at ASC").
		Find(&atts).Error
	return atts, err
}

func (r *attendanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]entity.CastAttendance, error) {
	var atts []entity.CastAttendance
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Where("clock_in_at >= ? AND clock_in_at < ?", from, to).
		Order("cast_id ASC, clock_in_at ASC").
		Find(&atts).Error
	return atts, err
}

type dailySummaryRepository struct {
	db *gorm.DB
}

// NewDailySummaryRepository creates a new daily summary repository
func NewDailySummaryRepository(db *gorm.DB) domainRepo.DailySummaryRepository {
	return &dailySummaryRepository{db: db}
}

func (r *dailySummaryRepository) Upsert(ctx context.Context, summary *entity.CastDailySummary) error {
	return dbFrom(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}, {Name: "cast_id"}, {Name: "work_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"worked_min", "payroll", "free_sales", "nomination_sales", "inhouse_sales", "dohan_sales",
			}),
		}).
		Create(summary).Error
}

func (r *dailySummaryRepository) ListByCastBetween(ctx context.Context, castID uint, from, to time.Time) ([]entity.CastDailySummary, error) {
	var summaries []entity.CastDailySummary
	err := dbFrom(ctx, r.db).
		Where("cast_id = ? AND work_date >= ? AND work_date < ?", castID, from, to).
		Order("work_date ASC").
		Find(&summaries).Error
	return summaries, err
}

func (r *dailySummaryRepository) ListBetween(ctx context.Context, from, to time.Time) ([]entity.CastDailySummary, error) {
	var summaries []entity.CastDailySummary
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Where("work_date >= ? AND work_date < ?", from, to).
		Order("cast_id ASC, work_date ASC").
		Find(&summaries).Error
	return summaries, err
}
