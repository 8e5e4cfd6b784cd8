package support

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/domain"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	protected.POST("/support-tickets", h.Create)
	protected.GET("/support-tickets", h.List)
	protected.POST("/support-tickets/:id/close", h.Close)

	admin.POST("/support-tickets/:id/answer", h.Answer)
}

// Create opens a support ticket.
// @Summary		Open a support ticket
// @Tags		Support
// @Security	BearerAuth
// @Param		request	body	CreateTicketRequest	true	"Subject and message"
// @Success		201	{object}	domain.SupportTicket
// @Failure		400	{object}	map[string]interface{}
// @Router		/support-tickets [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_REQUEST", "message": "Invalid request body"}})
		return
	}

	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"}})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": t})
}

// List returns own tickets, all tickets for admins, or one ticket with ?id=.
func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := c.GetString("role")

	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_ID", "message": "Invalid ticket ID"}})
			return
		}
		t, err := h.svc.Get(c.Request.Context(), userID, role, id)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
		return
	}

	items, err := h.svc.List(c.Request.Context(), userID, role, domain.TicketStatus(c.Query("status")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// Answer stores the admin reply.
// @Summary		Answer a support ticket
// @Tags		Support
// @Security	BearerAuth
// @Param		id		path	int				true	"Ticket ID"
// @Param		request	body	AnswerRequest	true	"Reply"
// @Success		200	{object}	domain.SupportTicket
// @Failure		404	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/support-tickets/{id}/answer [POST]
func (h *Handler) Answer(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_REQUEST", "message": "Invalid request body"}})
		return
	}

	t, err := h.svc.Answer(c.Request.Context(), c.GetInt64("user_id"), id, req.Answer)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
}

func (h *Handler) Close(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}

	t, err := h.svc.Close(c.Request.Context(), c.GetInt64("user_id"), c.GetString("role"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
}

func ticketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_ID", "message": "Invalid ticket ID"}})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_REQUEST", "message": "Invalid input"}})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "NOT_FOUND", "message": "Ticket not found"}})
	case errors.Is(err, ErrClosed):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": gin.H{"code": "TICKET_CLOSED", "message": "Ticket is already closed"}})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"code": "INTERNAL_ERROR", "message": "Internal error", "details": err.Error()}})
	}
}
