package payroll

import (
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// BasisType names the amount a commission rate is applied to
type BasisType string

const (
	BasisCost     BasisType = "cost"
	BasisSubtotal BasisType = "subtotal"
)

// PayoutBase chooses the commission base for a bill line. Champagne
// with a recorded cost is backed on cost, everything else on subtotal.
// This is the only place the champagne exception lives.
func PayoutBase(item *entity.BillItem) (base int64, basisType BasisType, basisValue int64) {
	master := item.ItemMaster
	if master != nil && master.Category != nil &&
		master.Category.MajorGroup == enum.GroupChampagne && master.CostValue() > 0 {
		cost := master.CostValue()
		return cost * int64(item.Qty), BasisCost, cost
	}
	sub := item.Subtotal()
	return sub, BasisSubtotal, sub
}
