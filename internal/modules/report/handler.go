package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/open-balances", h.GetOpenBalances)
}

// GetOpenBalances godoc
// @Summary Open balances grouped by booking status
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param debtors query bool false "Include the debtor list"
// @Param status query string false "Restrict the debtor list to one status"
// @Param limit query int false "Debtor list size (default 50)"
// @Success 200 {object} OpenBalances
// @Router /reports/open-balances [get]
func (h *Handler) GetOpenBalances(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.service.OpenBalances(ctx)
	if err != nil {
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report", err.Error())
		return
	}

	if c.Query("debtors") == "true" {
		limit, _ := strconv.Atoi(c.Query("limit"))
		debtors, err := h.service.Debtors(ctx, c.Query("status"), limit)
		if err != nil {
			if errors.Is(err, ErrInvalidStatus) {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown booking status")
				return
			}
			_ = c.Error(err)
			response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list debtors", err.Error())
			return
		}
		report.Debtors = debtors
	}

	response.Success(c, http.StatusOK, report)
}
