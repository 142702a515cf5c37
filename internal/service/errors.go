package service

import "errors"

// ValidationError indicates that caller input was rejected.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

var (
	// ErrDailyCapReached is returned once the daily outbound e-mail budget is spent.
	ErrDailyCapReached = errors.New("daily send limit reached")
	// ErrCaptchaFailed is returned when the CAPTCHA token is rejected.
	ErrCaptchaFailed = errors.New("failed captcha verification")
	// ErrRateLimited is returned when a client exceeds its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrBotDetected is returned when the honeypot field is filled in.
	ErrBotDetected = errors.New("bot detected")
	// ErrEmailFailed wraps delivery failures of the contact form e-mails.
	ErrEmailFailed = errors.New("email failed")
	// ErrInvalidCredentials is returned for unknown operators or bad passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
