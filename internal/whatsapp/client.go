// Package whatsapp relays lifecycle notifications to an external webhook
// (typically an automation platform such as n8n or Make) that owns the
// actual WhatsApp delivery.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

// ErrNotConfigured is returned when no webhook URL is set. The lifecycle
// engine records it as a failed delivery instead of aborting the transition.
var ErrNotConfigured = errors.New("whatsapp webhook not configured")

type Client struct {
	webhookURL string
	http       *http.Client
	log        *logger.Logger
}

type webhookPayload struct {
	LeadID  string `json:"lead_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewClient returns nil when the webhook URL is empty; a nil client reports
// ErrNotConfigured on every trigger.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppWebhookURL() == "" {
		return nil
	}

	return &Client{
		webhookURL: strings.TrimRight(cfg.GetWhatsAppWebhookURL(), "/"),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (c *Client) TriggerFirstTouch(ctx context.Context, contact ports.WhatsAppContact) error {
	message := fmt.Sprintf("Hi %s, thanks for reaching out! We received your enquiry and will get back to you shortly.", contact.Name)
	return c.trigger(ctx, contact, "first_touch", message)
}

func (c *Client) TriggerReminder(ctx context.Context, contact ports.WhatsAppContact) error {
	message := fmt.Sprintf("Hi %s, just checking in on your enquiry from a few days ago. Still interested? Reply here and we'll pick it up.", contact.Name)
	return c.trigger(ctx, contact, "reminder", message)
}

func (c *Client) trigger(ctx context.Context, contact ports.WhatsAppContact, kind, message string) error {
	if c == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(contact.Phone) == "" {
		return errors.New("lead has no phone number")
	}

	payload := webhookPayload{
		LeadID:  contact.LeadID.String(),
		Name:    contact.Name,
		Phone:   phone.NormalizeE164(contact.Phone),
		Email:   contact.Email,
		Type:    kind,
		Message: message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp webhook triggered", "lead_id", contact.LeadID, "type", kind)
	return nil
}
