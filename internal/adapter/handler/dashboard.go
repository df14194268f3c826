package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/usecase/analysis"
)

// Dashboard serves aggregate statistics over stored conversations
type Dashboard struct {
	sessions *analysis.Manager
	logger   *zap.Logger
}

// NewDashboard creates a new dashboard handler
func NewDashboard(sessions *analysis.Manager, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		sessions: sessions,
		logger:   logger,
	}
}

// Stats returns session aggregates for the operator
// @Summary      Dashboard statistics
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analysis.DashboardStats
// @Router       /dashboard/stats [get]
func (h *Dashboard) Stats(c echo.Context) error {
	username, err := owner(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.sessions.DashboardStats(c.Request().Context(), username)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, stats)
}
