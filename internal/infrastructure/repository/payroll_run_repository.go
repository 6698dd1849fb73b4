package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	domainRepo "github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type payrollRunRepository struct {
	db *gorm.DB
}

// NewPayrollRunRepository creates a new payroll run repository
func NewPayrollRunRepository(db *gorm.DB) domainRepo.PayrollRunRepository {
	return &payrollRunRepository{db: db}
}

func (r *payrollRunRepository) Create(ctx context.Context, run *entity.PayrollRun) error {
	return dbFrom(ctx, r.db).Create(run).Error
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id uint) (*entity.PayrollRun, error) {
	var run entity.PayrollRun
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}

func (r *payrollRunRepository) GetWithLines(ctx context.Context, id uint) (*entity.PayrollRun, error) {
	var run entity.PayrollRun
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("payroll_run_lines.cast_name ASC") }).
		Preload("Lines.BackRows", func(db *gorm.DB) *gorm.DB { return db.Order("payroll_run_back_rows.id ASC") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}

func (r *payrollRunRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Scopes(StoreScope(ctx)).Delete(&entity.PayrollRun{}, "id = ?", id).Error
}

func (r *payrollRunRepository) List(ctx context.Context) ([]entity.PayrollRun, error) {
	var runs []entity.PayrollRun
	err := dbFrom(ctx, r.db).
		Scopes(StoreScope(ctx)).
		Order("period_start DESC").
		Find(&runs).Error
	return runs, err
}

// CountOverlapping counts runs whose period intersects [periodStart, periodEnd]
func (r *payrollRunRepository) CountOverlapping(ctx context.Context, periodStart, periodEnd time.Time, excludeID uint) (int64, error) {
	var count int64
	query := dbFrom(ctx, r.db).Model(&entity.PayrollRun{}).
		Scopes(StoreScope(ctx)).
		Where("period_start <= ? AND period_end >= ?", periodEnd, periodStart)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *payrollRunRepository) CreateLines(ctx context.Context, lines []entity.PayrollRunLine) error {
	if len(lines) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Create(&lines).Error
}

func (r *payrollRunRepository) CreateBackRows(ctx context.Context, rows []entity.PayrollRunBackRow) error {
	if len(rows) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Create(&rows).Error
}
