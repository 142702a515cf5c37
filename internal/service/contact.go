package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/mail"
	"github.com/legxcy/outreach-api/internal/metrics"
	"github.com/legxcy/outreach-api/internal/provider/resend"
)

// CaptchaVerifier checks a CAPTCHA token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Limiter admits or rejects a request for key.
type Limiter interface {
	Allow(key string) bool
}

// ContactService handles submissions of the public contact form.
type ContactService struct {
	sender   EmailSender
	verifier CaptchaVerifier
	limiter  Limiter
	opts     MailerOptions
	logger   *slog.Logger
}

// NewContactService wires a ContactService. opts.ReplyTo is the operator
// mailbox receiving notifications.
func NewContactService(sender EmailSender, verifier CaptchaVerifier, limiter Limiter, opts MailerOptions, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{sender: sender, verifier: verifier, limiter: limiter, opts: opts, logger: logger}
}

// Submit runs the anti-abuse checks in order and then sends the operator
// notification followed by the auto-reply.
func (s *ContactService) Submit(ctx context.Context, req dto.ContactFormRequest, remoteIP string) error {
	if strings.TrimSpace(req.Website) != "" {
		s.logger.Warn("contact honeypot triggered", "ip", remoteIP)
		return ErrBotDetected
	}

	submission := mail.ContactSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if submission.Name == "" || submission.Email == "" || submission.Message == "" || strings.TrimSpace(req.Token) == "" {
		return ValidationError{Message: "Missing fields"}
	}

	ok, err := s.verifier.Verify(ctx, req.Token, remoteIP)
	if err != nil {
		return fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return ErrCaptchaFailed
	}

	if s.limiter != nil && !s.limiter.Allow(remoteIP) {
		return ErrRateLimited
	}

	if err := s.notify(ctx, submission); err != nil {
		s.logger.Error("contact notification failed", "email", submission.Email, "error", err)
		return errors.Join(ErrEmailFailed, err)
	}
	if err := s.reply(ctx, submission); err != nil {
		s.logger.Error("contact auto-reply failed", "email", submission.Email, "error", err)
		return errors.Join(ErrEmailFailed, err)
	}
	return nil
}

func (s *ContactService) notify(ctx context.Context, in mail.ContactSubmission) error {
	msg, err := mail.RenderContactNotification(in)
	if err != nil {
		return err
	}
	_, err = s.sender.Send(ctx, resend.Email{
		From:    senderAddress(s.opts.From),
		To:      []string{s.opts.ReplyTo},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: in.Email,
		Headers: map[string]string{"Auto-Submitted": "auto-generated"},
	})
	metrics.RecordEmail("contact_notify", err)
	return err
}

func (s *ContactService) reply(ctx context.Context, in mail.ContactSubmission) error {
	msg, err := mail.RenderContactReply(in)
	if err != nil {
		return err
	}
	_, err = s.sender.Send(ctx, resend.Email{
		From:    senderAddress(s.opts.From),
		To:      []string{in.Email},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: s.opts.ReplyTo,
		Headers: map[string]string{"Auto-Submitted": "auto-replied"},
	})
	metrics.RecordEmail("contact_reply", err)
	return err
}
