package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/middleware"
	"github.com/legxcy/outreach-api/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success sends data as the response body.
func Success(c echo.Context, status int, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, data)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, ErrorResponse{Error: message})
}

// FromServiceError maps a service failure onto its status code. fallback is
// the message used for unexpected errors.
func FromServiceError(c echo.Context, err error, fallback string) error {
	var validation service.ValidationError
	switch {
	case errors.As(err, &validation):
		return Error(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, service.ErrBotDetected):
		return Error(c, http.StatusBadRequest, "Bot detected")
	case errors.Is(err, service.ErrCaptchaFailed):
		return Error(c, http.StatusForbidden, "Failed captcha verification")
	case errors.Is(err, service.ErrRateLimited):
		return Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	case errors.Is(err, service.ErrDailyCapReached):
		return Error(c, http.StatusTooManyRequests, "Daily send limit reached")
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrEmailFailed):
		return Error(c, http.StatusInternalServerError, "Email failed")
	default:
		logError(c, fallback, err)
		return Error(c, http.StatusInternalServerError, fallback)
	}
}

func logError(c echo.Context, msg string, err error) {
	slog.ErrorContext(c.Request().Context(), msg,
		"request_id", middleware.RequestIDFromContext(c),
		"path", c.Request().URL.Path,
		"error", err,
	)
}
