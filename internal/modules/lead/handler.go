package lead

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/domain"
	"coursedesk/internal/pkg/response"
	"coursedesk/internal/pkg/validator"
)

// Handler handles lead HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the enquiry form on public and the pipeline on admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.POST("/leads/submit", h.SubmitLead)

	pipeline := admin.Group("/leads")
	pipeline.GET("", h.ListLeads)
	pipeline.GET("/stats", h.GetStats)
	pipeline.GET("/:id", h.GetLead)
	pipeline.PATCH("/:id/status", h.UpdateStatus)
	pipeline.POST("/:id/contacted", h.MarkContacted)
	pipeline.POST("/:id/convert", h.ConvertLead)
	pipeline.DELETE("/:id", h.DeleteLead)
}

// SubmitLead handles POST /api/v1/leads/submit (public)
// @Summary Submit a course enquiry
// @Description Public form. Repeated enquiries from the same email return the open lead.
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body SubmitLeadRequest true "Enquiry"
// @Success 201 {object} domain.Lead
// @Success 200 {object} domain.Lead
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /leads/submit [post]
func (h *Handler) SubmitLead(c *gin.Context) {
	var req SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	l, created, err := h.service.SubmitLead(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, l)
}

func (h *Handler) GetLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) ListLeads(c *gin.Context) {
	status := domain.LeadStatus(c.Query("status"))

	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	leads, total, err := h.service.ListLeads(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, LeadListResponse{Leads: leads, Total: total})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Status updated"})
}

func (h *Handler) MarkContacted(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	if err := h.service.MarkContacted(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Lead marked as contacted"})
}

// ConvertLead godoc
// @Summary Convert a lead into a student account
// @Tags Leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body ConvertLeadRequest true "Initial password"
// @Success 201 {object} ConvertLeadResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /leads/{id}/convert [post]
func (h *Handler) ConvertLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	res, err := h.service.ConvertLead(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) DeleteLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"by_status": stats})
}

func leadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.CustomError(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.CustomError(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrAlreadyConverted):
		response.CustomError(c, http.StatusConflict, "ALREADY_CONVERTED", "Lead already converted")
	case errors.Is(err, ErrCannotConvert):
		response.CustomError(c, http.StatusBadRequest, "CANNOT_CONVERT", "Lost leads cannot be converted")
	case errors.Is(err, ErrEmailExists):
		response.CustomError(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
	case errors.Is(err, ErrInvalidStatus):
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown lead status")
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}
