// Package ports defines the outbound interfaces the leads module depends on.
// Concrete adapters live in internal/email and internal/whatsapp; the
// lifecycle engine only sees these contracts.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// EmailSender delivers lifecycle emails. Implementations must not retry;
// the engine records a single outcome per invocation.
type EmailSender interface {
	SendFirstTouchEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error
	SendReminderEmail(ctx context.Context, toEmail, name string, leadID uuid.UUID) error
}

// WhatsAppContact is the lead projection the WhatsApp relay needs.
type WhatsAppContact struct {
	LeadID uuid.UUID
	Name   string
	Phone  string
	Email  string
}

// WhatsAppSender triggers the third-party webhook that relays a WhatsApp
// message. An unconfigured relay reports failure rather than erroring the
// transition.
type WhatsAppSender interface {
	TriggerFirstTouch(ctx context.Context, contact WhatsAppContact) error
	TriggerReminder(ctx context.Context, contact WhatsAppContact) error
}
