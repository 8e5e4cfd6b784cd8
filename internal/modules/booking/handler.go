package booking

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

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
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.GetBookings)
	rg.PATCH("/bookings", h.UpdateBooking)
	rg.DELETE("/bookings", h.DeleteBooking)
	rg.GET("/bookings/export", h.ExportBookings)
	rg.GET("/bookings/statuses", h.GetStatuses)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to create booking")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

// GetBookings serves GET /bookings?id=<id> for one booking and the filtered
// list otherwise.
func (h *Handler) GetBookings(c *gin.Context) {
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
			return
		}
		details, err := h.service.GetBooking(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err, "Failed to load booking")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"booking": details})
		return
	}

	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, err := h.service.ListBookings(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err, "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	details, err := h.service.UpdateBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to update booking")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": details})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "Failed to delete booking")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ExportBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	data, err := h.service.ExportBookings(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err, "Failed to export bookings")
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) GetStatuses(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"statuses": h.service.Statuses()})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown booking status")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Status change not allowed")
	case errors.Is(err, ErrStudentNotFound):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Student not found")
	case errors.Is(err, ErrCourseNotFound):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Course not found")
	case errors.Is(err, ErrCourseDateNotFound):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Course date not found")
	case errors.Is(err, ErrPartnerNotFound):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Partner not found")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Course date does not belong to course")
	default:
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback, err.Error())
	}
}
