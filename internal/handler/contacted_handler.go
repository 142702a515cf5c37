package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/service"
)

// ContactedHandler reads and writes contacted flags.
type ContactedHandler struct {
	contacts *service.ContactsService
}

// NewContactedHandler constructs a ContactedHandler.
func NewContactedHandler(contacts *service.ContactsService) *ContactedHandler {
	return &ContactedHandler{contacts: contacts}
}

// Get handles GET /api/contacted?names=a,b.
func (h *ContactedHandler) Get(c echo.Context) error {
	names := splitNames(c.QueryParam("names"))
	if len(names) == 0 {
		return Success(c, http.StatusOK, map[string]bool{})
	}

	statuses, err := h.contacts.GetStatuses(c.Request().Context(), names)
	if err != nil {
		logError(c, "read contacted flags failed", err)
		return Error(c, http.StatusInternalServerError, "Failed to read contacted status")
	}
	return Success(c, http.StatusOK, statuses)
}

// Update handles POST /api/contacted.
func (h *ContactedHandler) Update(c echo.Context) error {
	var req dto.ContactedUpdateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid JSON")
	}
	if req.Updates == nil {
		return Error(c, http.StatusBadRequest, "updates must be an array")
	}

	updated, err := h.contacts.ApplyUpdates(c.Request().Context(), req.Updates)
	if err != nil {
		return FromServiceError(c, err, "Failed to update contacted status")
	}
	return Success(c, http.StatusOK, dto.ContactedUpdateResponse{Success: true, Updated: updated})
}
