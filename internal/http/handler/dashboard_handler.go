package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

// Summary godoc
// @Summary Annual sales dashboard
// @Description Sold totals, progress against the annual target, order counts by status and open receivables
// @Tags Dashboard
// @Produce json
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} domain.DashboardDTO
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	summary, err := h.dashboardService.Summary(r.Context(), year)
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
