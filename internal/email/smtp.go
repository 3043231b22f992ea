package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"leadflow_backend/internal/leads/replytoken"
	"leadflow_backend/platform/config"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail. Each send is a single attempt with a fixed timeout; the
// lifecycle engine records the outcome and never retries.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	baseURL   string
	tokens    *replytoken.Signer
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(cfg config.EmailConfig, links config.ReplyLinkConfig, tokens *replytoken.Signer) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		baseURL:   links.GetAppBaseURL(),
		tokens:    tokens,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// replyLink builds the signed mark-replied URL embedded in every email.
func (s *SMTPSender) replyLink(leadID uuid.UUID) (string, error) {
	token, err := s.tokens.Sign(leadID)
	if err != nil {
		return "", fmt.Errorf("sign reply token: %w", err)
	}
	return fmt.Sprintf("%s/api/v1/leads/reply/%s", s.baseURL, token), nil
}

func (s *SMTPSender) SendFirstTouchEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error {
	link, err := s.replyLink(leadID)
	if err != nil {
		return err
	}

	content, err := renderEmailTemplate("first_touch.html", lifecycleEmailData{
		baseEmailData: baseEmailData{
			Title:    "Thanks for reaching out",
			Heading:  "Thanks for reaching out, " + name,
			CTALabel: "Reply to us",
			CTAURL:   link,
		},
		LeadName: name,
	})
	if err != nil {
		return err
	}

	return s.send(ctx, toEmail, fmt.Sprintf(subjectFirstTouchFmt, name), content)
}

func (s *SMTPSender) SendReminderEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error {
	link, err := s.replyLink(leadID)
	if err != nil {
		return err
	}

	content, err := renderEmailTemplate("reminder.html", lifecycleEmailData{
		baseEmailData: baseEmailData{
			Title:    "Quick follow-up",
			Heading:  "Quick follow-up, " + name,
			CTALabel: "Reply to us",
			CTAURL:   link,
		},
		LeadName: name,
	})
	if err != nil {
		return err
	}

	return s.send(ctx, toEmail, fmt.Sprintf(subjectReminderFmt, name), content)
}
