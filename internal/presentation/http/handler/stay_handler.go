package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/application/service"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// StayHandler handles cast stay and customer presence HTTP requests
type StayHandler struct {
	stayService *service.StayService
}

// NewStayHandler creates a new stay handler
func NewStayHandler(stayService *service.StayService) *StayHandler {
	return &StayHandler{stayService: stayService}
}

// SeatCast handles seating a cast at a bill's table
func (h *StayHandler) SeatCast(c *gin.Context) {
	billID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		CastID      uint       `json:"cast_id" binding:"required"`
		StayType    string     `json:"stay_type" binding:"required"`
		IsHonshimei bool       `json:"is_honshimei"`
		EnteredAt   *time.Time `json:"entered_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stay, err := h.stayService.SeatCast(c.Request.Context(), billID, &service.SeatCastInput{
		CastID:      req.CastID,
		StayType:    enum.StayType(req.StayType),
		IsHonshimei: req.IsHonshimei,
		EnteredAt:   req.EnteredAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Cast seated successfully", stay)
}

// EndStay handles ending a cast's open stay on a bill
func (h *StayHandler) EndStay(c *gin.Context) {
	billID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	castID, ok := ParseIDParam(c, "cast_id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	stay, err := h.stayService.EndStay(c.Request.Context(), billID, castID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stay ended successfully", stay)
}

// AttachCustomer handles attaching an identified customer to a bill
func (h *StayHandler) AttachCustomer(c *gin.Context) {
	billID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req struct {
		CustomerID uint       `json:"customer_id" binding:"required"`
		ArrivedAt  *time.Time `json:"arrived_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	presence, err := h.stayService.AttachCustomer(c.Request.Context(), billID, req.CustomerID, req.ArrivedAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Customer attached successfully", presence)
}

// MarkCustomerLeft handles recording an early customer departure
func (h *StayHandler) MarkCustomerLeft(c *gin.Context) {
	billID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	customerID, ok := ParseIDParam(c, "customer_id")
	if !ok {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	var req struct {
		LeftAt *time.Time `json:"left_at"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	presence, err := h.stayService.MarkCustomerLeft(c.Request.Context(), billID, customerID, req.LeftAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer marked as left", presence)
}

// StartNomination handles opening a customer-to-cast nomination interval
func (h *StayHandler) StartNomination(c *gin.Context) {
	billID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	customerID, ok := ParseIDParam(c, "customer_id")
	if !ok {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	var req struct {
		CastID uint `json:"cast_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	nomination, err := h.stayService.StartNomination(c.Request.Context(), billID, customerID, req.CastID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Nomination started successfully", nomination)
}

// EndNomination handles closing a customer-to-cast nomination interval
func (h *StayHandler) EndNomination(c *gin.Context) {
	billID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	customerID, ok := ParseIDParam(c, "customer_id")
	if !ok {
		response.BadRequest(c, "Invalid customer ID")
		return
	}
	castID, ok := ParseIDParam(c, "cast_id")
	if !ok {
		response.BadRequest(c, "Invalid cast ID")
		return
	}

	nomination, err := h.stayService.EndNomination(c.Request.Context(), billID, customerID, castID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Nomination ended successfully", nomination)
}
