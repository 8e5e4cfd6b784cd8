package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/pkg/response"
	"coursedesk/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.CreatePayment)
	rg.GET("/payments", h.ListPayments)
	rg.DELETE("/payments", h.DeletePayment)
	rg.GET("/payments/methods", h.GetMethods)
}

// CreatePayment godoc
// @Summary      Record a payment
// @Description  Stores a payment against a booking and recomputes its open balance and status
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreatePaymentRequest true "Payment"
// @Success      201 {object} PaymentResult
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	res, err := h.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to record payment")
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// ListPayments godoc
// @Summary      List payments of a booking
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        booking_id query int true "Booking ID"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Query("booking_id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking_id")
		return
	}

	items, err := h.service.ListPayments(c.Request.Context(), bookingID)
	if err != nil {
		h.writeError(c, err, "Failed to list payments")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": items})
}

// DeletePayment godoc
// @Summary      Delete a payment
// @Description  Removes a payment and recomputes the balance of its booking
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        id query int true "Payment ID"
// @Success      200 {object} PaymentResult
// @Failure      404 {object} ErrorResponse
// @Router       /payments [delete]
func (h *Handler) DeletePayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	res, err := h.service.DeletePayment(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to delete payment")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GetMethods(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"methods": h.service.Methods()})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Amount must be greater than zero")
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "payment_date must be YYYY-MM-DD")
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrPaymentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payment not found")
	default:
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback, err.Error())
	}
}
