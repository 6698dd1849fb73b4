package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/domain/entity"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// StoreHandler handles store, seat type and table HTTP requests
type StoreHandler struct {
	storeService *service.StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// List handles listing stores
func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.storeService.ListStores(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stores retrieved successfully", stores)
}

// Get handles getting a single store
func (h *StoreHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	store, err := h.storeService.GetStore(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Store retrieved successfully", store)
}

// Create handles creating a store
func (h *StoreHandler) Create(c *gin.Context) {
	var req struct {
		Slug string `json:"slug"`
		Name string `json:"name" binding:"required,min=1,max=100"`

		ServiceRate float64 `json:"service_rate"`
		TaxRate     float64 `json:"tax_rate"`

		FreeBackRate       float64 `json:"free_back_rate"`
		NominationBackRate float64 `json:"nomination_back_rate"`
		InhouseBackRate    float64 `json:"inhouse_back_rate"`
		DohanBackRate      float64 `json:"dohan_back_rate"`
		NomPoolRate        float64 `json:"nom_pool_rate"`

		BusinessDayCutoffHour *int   `json:"business_day_cutoff_hour"`
		PayrollCutoffKind     string `json:"payroll_cutoff_kind"`
		PayrollCutoffDay      int    `json:"payroll_cutoff_day"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	store := &entity.Store{
		Slug:               req.Slug,
		Name:               req.Name,
		ServiceRate:        req.ServiceRate,
		TaxRate:            req.TaxRate,
		FreeBackRate:       req.FreeBackRate,
		NominationBackRate: req.NominationBackRate,
		InhouseBackRate:    req.InhouseBackRate,
		DohanBackRate:      req.DohanBackRate,
		NomPoolRate:        req.NomPoolRate,
		PayrollCutoffKind:  enum.PayrollCutoffKind(req.PayrollCutoffKind),
		PayrollCutoffDay:   req.PayrollCutoffDay,
	}
	store.BusinessDayCutoffHour = 6
	if req.BusinessDayCutoffHour != nil {
		store.BusinessDayCutoffHour = *req.BusinessDayCutoffHour
	}

	created, err := h.storeService.CreateStore(c.Request.Context(), store)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Store created successfully", created)
}

// Update handles updating a store
func (h *StoreHandler) Update(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	var req struct {
		Name *string `json:"name"`

		ServiceRate *float64 `json:"service_rate"`
		TaxRate     *float64 `json:"tax_rate"`

		FreeBackRate       *float64 `json:"free_back_rate"`
		NominationBackRate *float64 `json:"nomination_back_rate"`
		InhouseBackRate    *float64 `json:"inhouse_back_rate"`
		DohanBackRate      *float64 `json:"dohan_back_rate"`
		NomPoolRate        *float64 `json:"nom_pool_rate"`

		BusinessDayCutoffHour *int    `json:"business_day_cutoff_hour"`
		PayrollCutoffKind     *string `json:"payroll_cutoff_kind"`
		PayrollCutoffDay      *int    `json:"payroll_cutoff_day"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateStoreInput{
		StoreID:               id,
		Name:                  req.Name,
		ServiceRate:           req.ServiceRate,
		TaxRate:               req.TaxRate,
		FreeBackRate:          req.FreeBackRate,
		NominationBackRate:    req.NominationBackRate,
		InhouseBackRate:       req.InhouseBackRate,
		DohanBackRate:         req.DohanBackRate,
		NomPoolRate:           req.NomPoolRate,
		BusinessDayCutoffHour: req.BusinessDayCutoffHour,
		PayrollCutoffDay:      req.PayrollCutoffDay,
	}
	if req.PayrollCutoffKind != nil {
		kind := enum.PayrollCutoffKind(*req.PayrollCutoffKind)
		input.PayrollCutoffKind = &kind
	}

	store, err := h.storeService.UpdateStore(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Store updated successfully", store)
}

// ListSeatTypes handles listing the current store's seat types
func (h *StoreHandler) ListSeatTypes(c *gin.Context) {
	seatTypes, err := h.storeService.ListSeatTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Seat types retrieved successfully", seatTypes)
}

// CreateSeatType handles creating a seat type
func (h *StoreHandler) CreateSeatType(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	var req struct {
		Name        string   `json:"name" binding:"required,min=1,max=50"`
		ServiceRate *float64 `json:"service_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	seatType, err := h.storeService.CreateSeatType(c.Request.Context(), &service.CreateSeatTypeInput{
		StoreID:     storeID,
		Name:        req.Name,
		ServiceRate: req.ServiceRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Seat type created successfully", seatType)
}

// UpdateSeatType handles updating a seat type
func (h *StoreHandler) UpdateSeatType(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid seat type ID")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		ServiceRate *float64 `json:"service_rate"`
		ClearRate   bool     `json:"clear_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	seatType, err := h.storeService.UpdateSeatType(c.Request.Context(), &service.UpdateSeatTypeInput{
		SeatTypeID:  id,
		Name:        req.Name,
		ServiceRate: req.ServiceRate,
		ClearRate:   req.ClearRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Seat type updated successfully", seatType)
}

// DeleteSeatType handles deleting a seat type
func (h *StoreHandler) DeleteSeatType(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid seat type ID")
		return
	}

	if err := h.storeService.DeleteSeatType(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Seat type deleted successfully", nil)
}

// ListTables handles listing the current store's tables
func (h *StoreHandler) ListTables(c *gin.Context) {
	tables, err := h.storeService.ListTables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tables retrieved successfully", tables)
}

// CreateTable handles creating a table
func (h *StoreHandler) CreateTable(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	var req struct {
		Code       string `json:"code" binding:"required,min=1,max=20"`
		SeatTypeID *uint  `json:"seat_type_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	table, err := h.storeService.CreateTable(c.Request.Context(), &service.CreateTableInput{
		StoreID:    storeID,
		Code:       req.Code,
		SeatTypeID: req.SeatTypeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Table created successfully", table)
}

// UpdateTable handles updating a table
func (h *StoreHandler) UpdateTable(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid table ID")
		return
	}

	var req struct {
		Code       *string `json:"code"`
		SeatTypeID *uint   `json:"seat_type_id"`
		ClearSeat  bool    `json:"clear_seat"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	table, err := h.storeService.UpdateTable(c.Request.Context(), &service.UpdateTableInput{
		TableID:    id,
		Code:       req.Code,
		SeatTypeID: req.SeatTypeID,
		ClearSeat:  req.ClearSeat,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table updated successfully", table)
}

// DeleteTable handles deleting a table
func (h *StoreHandler) DeleteTable(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid table ID")
		return
	}

	if err := h.storeService.DeleteTable(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table deleted successfully", nil)
}
