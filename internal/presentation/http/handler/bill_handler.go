package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// BillHandler handles bill lifecycle HTTP requests
type BillHandler struct {
	billService *service.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// List handles listing bills
func (h *BillHandler) List(c *gin.Context) {
	params := &repository.BillFilterParams{
		OpenOnly: c.Query("open") == "true",
	}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "Invalid table ID")
			return
		}
		tableID := uint(id)
		params.TableID = &tableID
	}
	const layout = "2006-01-02"
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(layout, raw)
		if err != nil {
			response.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		params.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(layout, raw)
		if err != nil {
			response.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		params.To = &t
	}

	bills, err := h.billService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bills retrieved successfully", bills)
}

// Get handles getting a single bill with its lines and stays
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill retrieved successfully", bill)
}

// Open handles opening a new bill on a table
func (h *BillHandler) Open(c *gin.Context) {
	var req struct {
		TableID    uint  `json:"table_id" binding:"required"`
		Pax        int   `json:"pax" binding:"required,min=1"`
		MainCastID *uint `json:"main_cast_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.OpenBill(c.Request.Context(), &service.OpenBillInput{
		TableID:    req.TableID,
		Pax:        req.Pax,
		MainCastID: req.MainCastID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Bill opened successfully", bill)
}

type lineRequest struct {
	ItemMasterID    uint       `json:"item_master_id" binding:"required"`
	Qty             int        `json:"qty" binding:"required,min=1"`
	Price           *int64     `json:"price"`
	OrderedAt       *time.Time `json:"ordered_at"`
	ServedByCastIDs []uint     `json:"served_by_cast_ids"`
	ServedByCastID  *uint      `json:"served_by_cast_id"`
	CustomerID      *uint      `json:"customer_id"`
	IsNomination    bool       `json:"is_nomination"`
	IsInhouse       bool       `json:"is_inhouse"`
	IsDohan         bool       `json:"is_dohan"`
}

func (r *lineRequest) toInput() *service.LineInput {
	return &service.LineInput{
		ItemMasterID:    r.ItemMasterID,
		Qty:             r.Qty,
		Price:           r.Price,
		OrderedAt:       r.OrderedAt,
		ServedByCastIDs: r.ServedByCastIDs,
		ServedByCastID:  r.ServedByCastID,
		CustomerID:      r.CustomerID,
		IsNomination:    r.IsNomination,
		IsInhouse:       r.IsInhouse,
		IsDohan:         r.IsDohan,
	}
}

// AddLine handles adding an order line to a bill
func (h *BillHandler) AddLine(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.AddLine(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Line added successfully", bill)
}

// AddLineAsCast handles a cast recording an order they served themselves
func (h *BillHandler) AddLineAsCast(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.AddLineAsCast(c.Request.Context(), id, userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Line added successfully", bill)
}

// UpdateLineQty handles changing the quantity of an order line
func (h *BillHandler) UpdateLineQty(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	itemID, ok := ParseIDParam(c, "item_id")
	if !ok {
		response.BadRequest(c, "Invalid line ID")
		return
	}

	var req struct {
		Qty int `json:"qty" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.UpdateLineQty(c.Request.Context(), id, itemID, req.Qty)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line updated successfully", bill)
}

// DeleteLine handles removing an order line from a bill
func (h *BillHandler) DeleteLine(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	itemID, ok := ParseIDParam(c, "item_id")
	if !ok {
		response.BadRequest(c, "Invalid line ID")
		return
	}

	bill, err := h.billService.DeleteLine(c.Request.Context(), id, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line removed successfully", bill)
}

// SetDiscount handles applying or clearing a bill discount
func (h *BillHandler) SetDiscount(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		AmountOff  *int64   `json:"amount_off"`
		PercentOff *float64 `json:"percent_off"`
		Clear      bool     `json:"clear"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var rule *entity.DiscountRule
	if !req.Clear {
		rule = &entity.DiscountRule{
			AmountOff:  req.AmountOff,
			PercentOff: req.PercentOff,
		}
	}

	bill, err := h.billService.SetDiscount(c.Request.Context(), id, rule)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount updated successfully", bill)
}

// SetChargeFlags handles toggling service charge and tax on a bill
func (h *BillHandler) SetChargeFlags(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		ApplyService *bool `json:"apply_service" binding:"required"`
		ApplyTax     *bool `json:"apply_tax" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.SetChargeFlags(c.Request.Context(), id, *req.ApplyService, *req.ApplyTax)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Charge flags updated successfully", bill)
}

// SetPax handles changing the head count on a bill
func (h *BillHandler) SetPax(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		Pax int `json:"pax" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.SetPax(c.Request.Context(), id, req.Pax)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Pax updated successfully", bill)
}

// SetMainCast handles assigning or clearing the bill's main cast
func (h *BillHandler) SetMainCast(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		CastID *uint `json:"cast_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.SetMainCast(c.Request.Context(), id, req.CastID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Main cast updated successfully", bill)
}

// ReplaceNominatedCasts handles replacing the bill's nominated cast set
func (h *BillHandler) ReplaceNominatedCasts(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		CastIDs []uint `json:"cast_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.ReplaceNominatedCasts(c.Request.Context(), id, req.CastIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Nominated casts updated successfully", bill)
}

// Reconcile handles re-planning the bill's automatic time charges
func (h *BillHandler) Reconcile(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.Reconcile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill reconciled successfully", bill)
}

// Close handles settling a bill
func (h *BillHandler) Close(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		PaidCash     int64  `json:"paid_cash"`
		PaidCard     int64  `json:"paid_card"`
		SettledTotal *int64 `json:"settled_total"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.CloseBill(c.Request.Context(), id, &service.CloseBillInput{
		PaidCash:     req.PaidCash,
		PaidCard:     req.PaidCard,
		SettledTotal: req.SettledTotal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill closed successfully", bill)
}

// Reopen handles reverting a closed bill to open
func (h *BillHandler) Reopen(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.ReopenBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill reopened successfully", bill)
}

// SnapshotStatus handles reporting whether a bill's payroll snapshot is current
func (h *BillHandler) SnapshotStatus(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	status, err := h.billService.GetSnapshotStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Snapshot status retrieved successfully", status)
}

// RegenerateSnapshot handles rebuilding a closed bill's payroll snapshot
func (h *BillHandler) RegenerateSnapshot(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.RegenerateSnapshot(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Snapshot regenerated successfully", bill)
}
