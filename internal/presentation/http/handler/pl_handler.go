package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// PLHandler handles profit and loss reporting HTTP requests
type PLHandler struct {
	plService *service.PLService
}

// NewPLHandler creates a new P/L handler
func NewPLHandler(plService *service.PLService) *PLHandler {
	return &PLHandler{plService: plService}
}

// Daily handles the daily P/L report
func (h *PLHandler) Daily(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}
	withBreakdown := c.Query("breakdown") == "true"

	report, err := h.plService.Daily(c.Request.Context(), storeID, date, withBreakdown)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Daily P/L retrieved successfully", report)
}

func parseYearMonth(c *gin.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, "Invalid year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, "Invalid month")
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// Monthly handles the monthly P/L report
func (h *PLHandler) Monthly(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}
	withBreakdown := c.Query("breakdown") == "true"

	report, err := h.plService.Monthly(c.Request.Context(), storeID, year, month, withBreakdown)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Monthly P/L retrieved successfully", report)
}

// Yearly handles the year-at-a-glance P/L report
func (h *PLHandler) Yearly(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, "Invalid year")
		return
	}

	days, err := h.plService.Yearly(c.Request.Context(), storeID, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Yearly P/L retrieved successfully", days)
}
