package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// MasterHandler handles item master and category HTTP requests
type MasterHandler struct {
	masterService *service.MasterService
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(masterService *service.MasterService) *MasterHandler {
	return &MasterHandler{masterService: masterService}
}

// List handles listing item masters
func (h *MasterHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	output, err := h.masterService.ListItemMasters(c.Request.Context(), &service.ListItemMastersInput{
		Page:         page,
		PerPage:      perPage,
		Search:       c.Query("search"),
		CategoryCode: c.Query("category"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item masters retrieved successfully", gin.H{
		"masters":     output.Masters,
		"total":       output.Total,
		"page":        output.Page,
		"per_page":    output.PerPage,
		"total_pages": output.TotalPages,
	})
}

// Get handles getting a single item master
func (h *MasterHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid item master ID")
		return
	}

	master, err := h.masterService.GetItemMaster(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item master retrieved successfully", master)
}

// Create handles creating an item master
func (h *MasterHandler) Create(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	var req struct {
		Code              string `json:"code" binding:"required,min=1,max=30"`
		Name              string `json:"name" binding:"required,min=1,max=100"`
		PriceRegular      int64  `json:"price_regular"`
		Cost              *int64 `json:"cost"`
		DurationMin       int    `json:"duration_min"`
		ApplyService      *bool  `json:"apply_service"`
		ExcludeFromPayout bool   `json:"exclude_from_payout"`
		CategoryCode      string `json:"category_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	master, err := h.masterService.CreateItemMaster(c.Request.Context(), &service.CreateItemMasterInput{
		StoreID:           storeID,
		Code:              req.Code,
		Name:              req.Name,
		PriceRegular:      req.PriceRegular,
		Cost:              req.Cost,
		DurationMin:       req.DurationMin,
		ApplyService:      req.ApplyService,
		ExcludeFromPayout: req.ExcludeFromPayout,
		CategoryCode:      req.CategoryCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item master created successfully", master)
}

// Update handles updating an item master
func (h *MasterHandler) Update(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid item master ID")
		return
	}

	var req struct {
		Name              *string `json:"name"`
		PriceRegular      *int64  `json:"price_regular"`
		Cost              *int64  `json:"cost"`
		ClearCost         bool    `json:"clear_cost"`
		DurationMin       *int    `json:"duration_min"`
		ApplyService      *bool   `json:"apply_service"`
		ExcludeFromPayout *bool   `json:"exclude_from_payout"`
		CategoryCode      *string `json:"category_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	master, err := h.masterService.UpdateItemMaster(c.Request.Context(), &service.UpdateItemMasterInput{
		MasterID:          id,
		Name:              req.Name,
		PriceRegular:      req.PriceRegular,
		Cost:              req.Cost,
		ClearCost:         req.ClearCost,
		DurationMin:       req.DurationMin,
		ApplyService:      req.ApplyService,
		ExcludeFromPayout: req.ExcludeFromPayout,
		CategoryCode:      req.CategoryCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item master updated successfully", master)
}

// Delete handles deleting an item master
func (h *MasterHandler) Delete(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid item master ID")
		return
	}

	if err := h.masterService.DeleteItemMaster(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item master deleted successfully", nil)
}

func bindCategoryInput(c *gin.Context, code string) (*service.CategoryInput, bool) {
	var req struct {
		Code       string `json:"code"`
		Name       string `json:"name" binding:"required,min=1,max=100"`
		MajorGroup string `json:"major_group" binding:"required"`

		FreeBackRate       float64 `json:"free_back_rate"`
		NominationBackRate float64 `json:"nomination_back_rate"`
		InhouseBackRate    float64 `json:"inhouse_back_rate"`

		UseFixedPayoutFreeIn bool   `json:"use_fixed_payout_free_in"`
		PayoutFixedPerItem   *int64 `json:"payout_fixed_per_item"`
		ExcludeFromNomPool   bool   `json:"exclude_from_nom_pool"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}
	if code == "" {
		code = req.Code
	}

	return &service.CategoryInput{
		Code:                 code,
		Name:                 req.Name,
		MajorGroup:           enum.MajorGroup(req.MajorGroup),
		FreeBackRate:         req.FreeBackRate,
		NominationBackRate:   req.NominationBackRate,
		InhouseBackRate:      req.InhouseBackRate,
		UseFixedPayoutFreeIn: req.UseFixedPayoutFreeIn,
		PayoutFixedPerItem:   req.PayoutFixedPerItem,
		ExcludeFromNomPool:   req.ExcludeFromNomPool,
	}, true
}

// ListCategories handles listing item categories
func (h *MasterHandler) ListCategories(c *gin.Context) {
	categories, err := h.masterService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", categories)
}

// CreateCategory handles creating an item category
func (h *MasterHandler) CreateCategory(c *gin.Context) {
	input, ok := bindCategoryInput(c, "")
	if !ok {
		return
	}

	category, err := h.masterService.CreateCategory(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category created successfully", category)
}

// UpdateCategory handles updating an item category
func (h *MasterHandler) UpdateCategory(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Invalid category code")
		return
	}

	input, ok := bindCategoryInput(c, code)
	if !ok {
		return
	}

	category, err := h.masterService.UpdateCategory(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category updated successfully", category)
}
