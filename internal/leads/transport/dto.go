package transport

import (
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Source  string `json:"source" validate:"required,min=1,max=100"`
	Message string `json:"message,omitempty" validate:"max=2000"`
}

type UpdateLeadStatusRequest struct {
	Status domain.Status `json:"status" validate:"required,oneof=NEW CONTACTED REPLIED REMINDER_SENT IN_PROGRESS WON LOST"`
}

type ListLeadsRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=NEW CONTACTED REPLIED REMINDER_SENT IN_PROGRESS WON LOST"`
	Source string `form:"source" validate:"max=100"`
	Offset int    `form:"offset" validate:"min=0"`
	Limit  int    `form:"limit" validate:"min=0,max=500"`
}

// Response DTOs
type LeadResponse struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Phone          *string       `json:"phone,omitempty"`
	Source         string        `json:"source"`
	Message        *string       `json:"message,omitempty"`
	Status         domain.Status `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	FirstContactAt *time.Time    `json:"firstContactAt,omitempty"`
	EmailSentAt    *time.Time    `json:"emailSentAt,omitempty"`
	WhatsAppSentAt *time.Time    `json:"whatsappSentAt,omitempty"`
	RepliedAt      *time.Time    `json:"repliedAt,omitempty"`
	ReminderSentAt *time.Time    `json:"reminderSentAt,omitempty"`
	LastTouchAt    *time.Time    `json:"lastTouchAt,omitempty"`
}

type LeadListResponse struct {
	Items  []LeadResponse `json:"items"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

type MessageLogResponse struct {
	ID               uuid.UUID      `json:"id"`
	Channel          domain.Channel `json:"channel"`
	Kind             domain.Kind    `json:"kind"`
	Success          bool           `json:"success"`
	ProviderResponse *string        `json:"providerResponse,omitempty"`
	SentAt           time.Time      `json:"sentAt"`
}

// SkippedRow reports one import row that was rejected. Line numbers are
// 1-based and count the header row.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportResponse struct {
	Imported []LeadResponse `json:"imported"`
	Skipped  []SkippedRow   `json:"skipped"`
}

type KPIResponse struct {
	TotalLeads     int    `json:"totalLeads"`
	Contacted      int    `json:"contacted"`
	Replied        int    `json:"replied"`
	RemindersSent  int    `json:"remindersSent"`
	Won            int    `json:"won"`
	ConversionRate string `json:"conversionRate"`
}
