package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/service"
)

// CronHandler rebuilds the configured outreach lists.
type CronHandler struct {
	outreach *service.OutreachService
	queries  []string
}

// NewCronHandler constructs a CronHandler refreshing queries in order.
func NewCronHandler(outreach *service.OutreachService, queries []string) *CronHandler {
	return &CronHandler{outreach: outreach, queries: queries}
}

// Refresh handles GET /api/cron-refresh.
func (h *CronHandler) Refresh(c echo.Context) error {
	results := h.outreach.RefreshAll(c.Request().Context(), h.queries)
	return Success(c, http.StatusOK, dto.CronRefreshResponse{OK: true, Results: results})
}
