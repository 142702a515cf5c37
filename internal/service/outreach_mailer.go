package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/mail"
	"github.com/legxcy/outreach-api/internal/metrics"
	"github.com/legxcy/outreach-api/internal/normalize"
	"github.com/legxcy/outreach-api/internal/provider/resend"
)

// DefaultDailyCap is the number of outreach e-mails allowed per UTC day.
const DefaultDailyCap = 25

// EmailSender delivers a rendered e-mail.
type EmailSender interface {
	Send(ctx context.Context, email resend.Email) (string, error)
}

// DailyQuota counts sends per day.
type DailyQuota interface {
	Increment(ctx context.Context, day time.Time) (int64, error)
}

// MailerOptions configures sender identity and the daily budget.
type MailerOptions struct {
	From     string
	ReplyTo  string
	DailyCap int
}

// OutreachMailer sends templated outreach e-mails and records the recipient
// as contacted.
type OutreachMailer struct {
	sender   EmailSender
	quota    DailyQuota
	contacts *ContactsService
	opts     MailerOptions
	now      func() time.Time
	logger   *slog.Logger
}

// NewOutreachMailer wires an OutreachMailer.
func NewOutreachMailer(sender EmailSender, quota DailyQuota, contacts *ContactsService, opts MailerOptions, logger *slog.Logger) *OutreachMailer {
	if opts.DailyCap <= 0 {
		opts.DailyCap = DefaultDailyCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutreachMailer{
		sender:   sender,
		quota:    quota,
		contacts: contacts,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

// Send validates req, spends one unit of the daily budget, delivers the
// e-mail and marks the prospect as contacted. Once the e-mail is accepted a
// failed status write is logged and reported as contacted == false, not as
// an error.
func (m *OutreachMailer) Send(ctx context.Context, req dto.OutreachSendRequest) (contacted bool, err error) {
	to := strings.TrimSpace(req.To)
	name := strings.TrimSpace(req.Name)
	message := strings.TrimSpace(req.Message)
	if to == "" || name == "" || message == "" {
		return false, ValidationError{Message: "Missing required fields"}
	}
	if !normalize.IsEmail(to) {
		return false, ValidationError{Message: "Invalid email address"}
	}

	count, err := m.quota.Increment(ctx, m.now())
	if err != nil {
		return false, err
	}
	if count > int64(m.opts.DailyCap) {
		m.logger.Warn("daily outreach cap reached", "count", count, "cap", m.opts.DailyCap)
		return false, ErrDailyCapReached
	}

	business := strings.TrimSpace(req.Business)
	msg, err := mail.RenderOutreach(mail.Outreach{
		Name:     name,
		Business: business,
		Website:  strings.TrimSpace(req.Website),
		Message:  message,
		Subject:  req.Subject,
	})
	if err != nil {
		return false, fmt.Errorf("render outreach email: %w", err)
	}

	id, err := m.sender.Send(ctx, resend.Email{
		From:    senderAddress(m.opts.From),
		To:      []string{to},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: m.opts.ReplyTo,
	})
	metrics.RecordEmail("outreach", err)
	if err != nil {
		m.logger.Error("outreach email failed", "to", to, "error", err)
		return false, fmt.Errorf("send outreach email: %w", err)
	}
	m.logger.Info("outreach email sent", "to", to, "message_id", id)

	if err := m.contacts.MarkContacted(ctx, to, name, business); err != nil {
		m.logger.Error("mark contacted failed after send", "to", to, "message_id", id, "error", err)
		return false, nil
	}
	return true, nil
}

func senderAddress(from string) string {
	if from == "" || strings.Contains(from, "<") {
		return from
	}
	return fmt.Sprintf("%s <%s>", mail.Brand, from)
}
