// Package webhook receives callbacks from external delivery providers.
package webhook

import (
	"net/http"

	"leadflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log}
}

// WhatsAppStatusPayload is the delivery-status callback the WhatsApp relay
// posts back. All fields are optional; providers differ in what they send.
type WhatsAppStatusPayload struct {
	LeadID    string `json:"lead_id"`
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Phone     string `json:"phone"`
	Timestamp string `json:"timestamp"`
}

// HandleWhatsAppStatus acknowledges a delivery-status callback.
// POST /api/v1/webhooks/whatsapp-status
//
// The callback is logged but not yet folded back into the message log;
// delivery-receipt ingestion is a planned follow-up once the relay's
// payload stabilises.
func (h *Handler) HandleWhatsAppStatus(c *gin.Context) {
	var payload WhatsAppStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Warn("whatsapp status webhook with unreadable body", "error", err)
	} else {
		h.log.Info("whatsapp status received",
			"lead_id", payload.LeadID,
			"message_id", payload.MessageID,
			"status", payload.Status,
		)
	}

	c.JSON(http.StatusOK, gin.H{"message": "status received"})
}
