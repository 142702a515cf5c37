package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/service"
)

// OutreachHandler serves the prospect list and the outbound e-mail endpoint.
type OutreachHandler struct {
	outreach *service.OutreachService
	mailer   *service.OutreachMailer
}

// NewOutreachHandler constructs an OutreachHandler.
func NewOutreachHandler(outreach *service.OutreachService, mailer *service.OutreachMailer) *OutreachHandler {
	return &OutreachHandler{outreach: outreach, mailer: mailer}
}

// List handles GET /api/outreach?query=&refresh=1.
func (h *OutreachHandler) List(c echo.Context) error {
	entries, err := h.outreach.List(c.Request().Context(), c.QueryParam("query"), queryFlag(c.QueryParam("refresh")))
	if err != nil {
		logError(c, "outreach list failed", err)
		return Error(c, http.StatusInternalServerError, "Failed to load outreach list")
	}
	return Success(c, http.StatusOK, entries)
}

// Send handles POST /api/outreach.
func (h *OutreachHandler) Send(c echo.Context) error {
	var req dto.OutreachSendRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid JSON")
	}

	contacted, err := h.mailer.Send(c.Request().Context(), req)
	if err != nil {
		return FromServiceError(c, err, "Failed to send email")
	}
	return Success(c, http.StatusOK, dto.OutreachSendResponse{OK: true, Contacted: contacted})
}
