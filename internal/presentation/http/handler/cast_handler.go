package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// CastHandler handles cast, attendance and daily summary HTTP requests
type CastHandler struct {
	castService *service.CastService
}

// NewCastHandler creates a new cast handler
func NewCastHandler(castService *service.CastService) *CastHandler {
	return &CastHandler{castService: castService}
}

// List handles listing casts
func (h *CastHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	output, err := h.castService.ListCasts(c.Request.Context(), &service.ListCastsInput{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Casts retrieved successfully", gin.H{
		"casts":       output.Casts,
		"total":       output.Total,
		"page":        output.Page,
		"per_page":    output.PerPage,
		"total_pages": output.TotalPages,
	})
}

// Get handles getting a single cast
func (h *CastHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	cast, err := h.castService.GetCast(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cast retrieved successfully", cast)
}

// Create handles creating a cast profile
func (h *CastHandler) Create(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	var req struct {
		UserID     uint   `json:"user_id" binding:"required"`
		Name       string `json:"name" binding:"required,min=1,max=100"`
		HourlyWage int64  `json:"hourly_wage"`

		FreeBackRate       *float64 `json:"free_back_rate"`
		NominationBackRate *float64 `json:"nomination_back_rate"`
		InhouseBackRate    *float64 `json:"inhouse_back_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cast, err := h.castService.CreateCast(c.Request.Context(), &service.CreateCastInput{
		UserID:             req.UserID,
		StoreID:            storeID,
		Name:               req.Name,
		HourlyWage:         req.HourlyWage,
		FreeBackRate:       req.FreeBackRate,
		NominationBackRate: req.NominationBackRate,
		InhouseBackRate:    req.InhouseBackRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Cast created successfully", cast)
}

// Update handles updating a cast profile
func (h *CastHandler) Update(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	var req struct {
		Name       *string `json:"name"`
		HourlyWage *int64  `json:"hourly_wage"`

		FreeBackRate       *float64 `json:"free_back_rate"`
		NominationBackRate *float64 `json:"nomination_back_rate"`
		InhouseBackRate    *float64 `json:"inhouse_back_rate"`
		ClearStayRates     bool     `json:"clear_stay_rates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cast, err := h.castService.UpdateCast(c.Request.Context(), &service.UpdateCastInput{
		CastID:             id,
		Name:               req.Name,
		HourlyWage:         req.HourlyWage,
		FreeBackRate:       req.FreeBackRate,
		NominationBackRate: req.NominationBackRate,
		InhouseBackRate:    req.InhouseBackRate,
		ClearStayRates:     req.ClearStayRates,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cast updated successfully", cast)
}

// Delete handles deleting a cast profile
func (h *CastHandler) Delete(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	if err := h.castService.DeleteCast(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cast deleted successfully", nil)
}

// SetCategoryRate handles setting a per-category rate override for a cast
func (h *CastHandler) SetCategoryRate(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Invalid category code")
		return
	}

	var req struct {
		FreeBackRate       *float64 `json:"free_back_rate"`
		NominationBackRate *float64 `json:"nomination_back_rate"`
		InhouseBackRate    *float64 `json:"inhouse_back_rate"`
		DohanBackRate      *float64 `json:"dohan_back_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rate, err := h.castService.SetCategoryRate(c.Request.Context(), &service.SetCategoryRateInput{
		CastID:             id,
		CategoryCode:       code,
		FreeBackRate:       req.FreeBackRate,
		NominationBackRate: req.NominationBackRate,
		InhouseBackRate:    req.InhouseBackRate,
		DohanBackRate:      req.DohanBackRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category rate saved successfully", rate)
}

// DeleteCategoryRate handles removing a per-category rate override
func (h *CastHandler) DeleteCategoryRate(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Invalid category code")
		return
	}

	if err := h.castService.DeleteCategoryRate(c.Request.Context(), id, code); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category rate removed successfully", nil)
}

// ClockIn handles recording a cast clock-in
func (h *CastHandler) ClockIn(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	var req struct {
		At *time.Time `json:"at"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	att, err := h.castService.ClockIn(c.Request.Context(), id, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Clocked in successfully", att)
}

// ClockOut handles recording a cast clock-out
func (h *CastHandler) ClockOut(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	var req struct {
		At *time.Time `json:"at"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	att, err := h.castService.ClockOut(c.Request.Context(), id, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Clocked out successfully", att)
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"

	from, err := time.Parse(layout, c.Query("from"))
	if err != nil {
		response.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(layout, c.Query("to"))
	if err != nil {
		response.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		response.BadRequest(c, "to date must not precede from date")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// ListAttendances handles listing a cast's attendance records
func (h *CastHandler) ListAttendances(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	attendances, err := h.castService.ListAttendances(c.Request.Context(), id, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Attendances retrieved successfully", attendances)
}

// ListDailySummaries handles listing a cast's per-day work summaries
func (h *CastHandler) ListDailySummaries(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	summaries, err := h.castService.ListDailySummaries(c.Request.Context(), id, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Daily summaries retrieved successfully", summaries)
}
