package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/service"
)

// OutdatedSitesHandler serves the directory-based outdated sites scan.
type OutdatedSitesHandler struct {
	outdated *service.OutdatedSitesService
}

// NewOutdatedSitesHandler constructs an OutdatedSitesHandler.
func NewOutdatedSitesHandler(outdated *service.OutdatedSitesService) *OutdatedSitesHandler {
	return &OutdatedSitesHandler{outdated: outdated}
}

// List handles GET /api/outdated-sites?keywords=&location=&refresh=1.
func (h *OutdatedSitesHandler) List(c echo.Context) error {
	sites, err := h.outdated.Scan(c.Request().Context(), c.QueryParam("keywords"), c.QueryParam("location"), queryFlag(c.QueryParam("refresh")))
	if err != nil {
		logError(c, "outdated sites scan failed", err)
		return Error(c, http.StatusInternalServerError, "Failed to scan listings")
	}
	return Success(c, http.StatusOK, sites)
}
