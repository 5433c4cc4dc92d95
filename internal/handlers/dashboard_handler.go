package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/service"
)

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *slog.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// GetDashboard handles GET /api/admin/dashboard?period=today|week|month|all
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	period := models.DashboardPeriod(r.URL.Query().Get("period"))

	stats, err := h.dashboard.GetDashboard(r.Context(), period)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, stats, h.logger)
}
