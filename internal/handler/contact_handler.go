package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/middleware"
	"github.com/legxcy/outreach-api/internal/service"
)

const contactSuccessMessage = "Thanks for reaching out! We'll get back to you shortly."

// ContactFormHandler accepts submissions of the public contact form.
type ContactFormHandler struct {
	contact *service.ContactService
}

// NewContactFormHandler constructs a ContactFormHandler.
func NewContactFormHandler(contact *service.ContactService) *ContactFormHandler {
	return &ContactFormHandler{contact: contact}
}

// Submit handles POST /api/contact.
func (h *ContactFormHandler) Submit(c echo.Context) error {
	var req dto.ContactFormRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid JSON")
	}

	if err := h.contact.Submit(c.Request().Context(), req, middleware.ClientIP(c)); err != nil {
		return FromServiceError(c, err, "Email failed")
	}
	return Success(c, http.StatusOK, dto.ContactFormResponse{Success: true, Message: contactSuccessMessage})
}
