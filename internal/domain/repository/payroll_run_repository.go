package repository

import (
	"context"
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
)

// PayrollRunRepository persists finalized payroll runs. CountOverlapping
// backs the one-open-run-per-period rule.
type PayrollRunRepository interface {
	Create(ctx context.Context, run *entity.PayrollRun) error
	GetByID(ctx context.Context, id uint) (*entity.PayrollRun, error)
	GetWithLines(ctx context.Context, id uint) (*entity.PayrollRun, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.PayrollRun, error)
	CountOverlapping(ctx context.Context, periodStart, periodEnd time.Time, excludeID uint) (int64, error)
	CreateLines(ctx context.Context, lines []entity.PayrollRunLine) error
	CreateBackRows(ctx context.Context, rows []entity.PayrollRunBackRow) error
}
