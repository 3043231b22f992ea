package email

import (
	"context"

	"leadflow_backend/internal/leads/replytoken"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Sender delivers lifecycle emails to leads.
type Sender interface {
	SendFirstTouchEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error
	SendReminderEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error
}

// NoopSender is used when email sending is disabled (no SMTP host
// configured). Sends succeed without doing anything.
type NoopSender struct{}

func (NoopSender) SendFirstTouchEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error {
	return nil
}

func (NoopSender) SendReminderEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error {
	return nil
}

// NewSender returns the SMTP sender when email is enabled, otherwise a noop.
func NewSender(cfg config.EmailConfig, links config.ReplyLinkConfig, tokens *replytoken.Signer, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email sending disabled; outbound emails will be no-ops")
		return NoopSender{}
	}

	return NewSMTPSender(cfg, links, tokens)
}
