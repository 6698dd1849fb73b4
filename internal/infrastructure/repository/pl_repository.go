package repository

import (
	"context"
	"time"

	domainRepo "github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type plRepository struct {
	db *gorm.DB
}

// NewPLRepository creates a new profit/loss repository
func NewPLRepository(db *gorm.DB) domainRepo.PLRepository {
	return &plRepository{db: db}
}

func (r *plRepository) ListClosedBillRows(ctx context.Context, storeID uint, from, to time.Time) ([]domainRepo.BillPLRow, error) {
	var rows []domainRepo.BillPLRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id as bill_id,
			t.store_id as store_id,
			b.closed_at as closed_at,
			b.subtotal as subtotal,
			b.service_charge as service_charge,
			b.tax as tax,
			b.discount as discount,
			b.total as total,
			b.pax as pax,
			EXISTS (
				SELECT 1 FROM bill_cast_stays s
				WHERE s.bill_id = b.id AND s.stay_type IN ('nom', 'dohan')
			) as has_nomination,
			b.payroll_snapshot as snapshot
		FROM bills b
		JOIN tables t ON t.id = b.table_id
		WHERE t.store_id = ?
		  AND b.closed_at >= ? AND b.closed_at < ?
		ORDER BY b.closed_at ASC
	`, storeID, from, to).Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *plRepository) ListBillItemAgg(ctx context.Context, storeID uint, from, to time.Time) ([]domainRepo.ItemAggRow, error) {
	var rows []domainRepo.ItemAggRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id as bill_id,
			b.closed_at as closed_at,
			COALESCE(m.item_category_code, '') as category_code,
			COALESCE(c.major_group, '') as major_group,
			COALESCE(m.code, '') as master_code,
			bi.qty as qty,
			bi.price * bi.qty as amount
		FROM bills b
		JOIN tables t ON t.id = b.table_id
		JOIN bill_items bi ON bi.bill_id = b.id
		LEFT JOIN item_masters m ON m.id = bi.item_master_id
		LEFT JOIN item_categories c ON c.code = m.item_category_code
		WHERE t.store_id = ?
		  AND b.closed_at >= ? AND b.closed_at < ?
		ORDER BY b.closed_at ASC, bi.id ASC
	`, storeID, from, to).Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *plRepository) ListBillCosts(ctx context.Context, storeID uint, from, to time.Time) ([]domainRepo.CostRow, error) {
	var rows []domainRepo.CostRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id as bill_id,
			COALESCE(SUM(m.cost * bi.qty), 0) as cost
		FROM bills b
		JOIN tables t ON t.id = b.table_id
		JOIN bill_items bi ON bi.bill_id = b.id
		JOIN item_masters m ON m.id = bi.item_master_id
		WHERE t.store_id = ?
		  AND b.closed_at >= ? AND b.closed_at < ?
		  AND m.cost IS NOT NULL
		GROUP BY b.id
	`, storeID, from, to).Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}
