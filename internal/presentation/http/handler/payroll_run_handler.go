package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// PayrollRunHandler handles payroll run and export HTTP requests
type PayrollRunHandler struct {
	payrollRunService *service.PayrollRunService
}

// NewPayrollRunHandler creates a new payroll run handler
func NewPayrollRunHandler(payrollRunService *service.PayrollRunService) *PayrollRunHandler {
	return &PayrollRunHandler{payrollRunService: payrollRunService}
}

// Create handles creating a payroll run for the period containing the
// reference date
func (h *PayrollRunHandler) Create(c *gin.Context) {
	storeID, ok := GetStoreID(c)
	if !ok {
		response.BadRequest(c, "Store context required")
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req struct {
		Ref string `json:"ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ref, err := time.Parse("2006-01-02", req.Ref)
	if err != nil {
		response.BadRequest(c, "Invalid ref date, expected YYYY-MM-DD")
		return
	}

	run, err := h.payrollRunService.CreateRun(c.Request.Context(), storeID, ref, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Payroll run created successfully", run)
}

// List handles listing the current store's payroll runs
func (h *PayrollRunHandler) List(c *gin.Context) {
	runs, err := h.payrollRunService.ListRuns(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payroll runs retrieved successfully", runs)
}

// Get handles getting a payroll run with its rows
func (h *PayrollRunHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid payroll run ID")
		return
	}

	run, err := h.payrollRunService.GetRun(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payroll run retrieved successfully", run)
}

// Delete handles deleting a payroll run
func (h *PayrollRunHandler) Delete(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid payroll run ID")
		return
	}

	if err := h.payrollRunService.DeleteRun(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payroll run deleted successfully", nil)
}

// ExportCSV handles downloading a payroll run as a spreadsheet-ready
// CSV file
func (h *PayrollRunHandler) ExportCSV(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid payroll run ID")
		return
	}

	data, err := h.payrollRunService.ExportCSV(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("payroll_run_%d.csv", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "text/csv; charset=utf-8", data)
}
