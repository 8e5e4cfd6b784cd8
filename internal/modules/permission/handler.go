package permission

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/domain"
	"coursedesk/internal/pkg/response"
	"coursedesk/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /me/pages for every user and the admin table.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, admin *gin.RouterGroup) {
	protected.GET("/me/pages", h.MyPages)
	admin.GET("/permissions", h.List)
	admin.PUT("/permissions", h.Set)
}

// MyPages godoc
// @Summary      Pages the current role may open
// @Tags         Permissions
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /me/pages [get]
func (h *Handler) MyPages(c *gin.Context) {
	role := domain.UserRole(c.GetString("role"))
	pages, err := h.service.AllowedPages(c.Request.Context(), role)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load pages")
		return
	}
	if role == domain.RoleAdmin {
		pages = domain.AllPages()
	}
	response.Success(c, http.StatusOK, gin.H{"role": role, "pages": pages})
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list permissions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"permissions": items, "pages": domain.AllPages()})
}

// Set godoc
// @Summary      Allow or deny a page for a role
// @Tags         Permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body SetPermissionRequest true "Flag"
// @Success      200 {object} domain.PagePermission
// @Failure      400 {object} map[string]interface{}
// @Router       /permissions [put]
func (h *Handler) Set(c *gin.Context) {
	var req SetPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	p, err := h.service.Set(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown role")
	case errors.Is(err, ErrInvalidPage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown page")
	case err != nil:
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save permission", err.Error())
	default:
		response.Success(c, http.StatusOK, p)
	}
}
