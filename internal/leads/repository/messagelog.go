package repository

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MessageLog is one immutable record of an outbound notification attempt.
type MessageLog struct {
	ID               uuid.UUID
	LeadID           uuid.UUID
	Channel          domain.Channel
	Kind             domain.Kind
	Success          bool
	ProviderResponse *string
	SentAt           time.Time
}

// MessageLogParams describes a message-log append. Entries are written only
// by ApplyTransition, inside the transition's transaction.
type MessageLogParams struct {
	Channel          domain.Channel
	Kind             domain.Kind
	Success          bool
	ProviderResponse string
}

func insertMessageLog(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, params MessageLogParams) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO message_logs (id, lead_id, channel, kind, success, provider_response, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), leadID, string(params.Channel), string(params.Kind),
		params.Success, params.ProviderResponse, time.Now().UTC())
	return err
}

// ListMessages returns the notification history for a lead, newest first.
func (r *Repository) ListMessages(ctx context.Context, leadID uuid.UUID) ([]MessageLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, channel, kind, success, provider_response, sent_at
		FROM message_logs
		WHERE lead_id = $1
		ORDER BY sent_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]MessageLog, 0)
	for rows.Next() {
		var entry MessageLog
		var rawChannel, rawKind string
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &rawChannel, &rawKind,
			&entry.Success, &entry.ProviderResponse, &entry.SentAt,
		); err != nil {
			return nil, err
		}

		channel, err := domain.ParseChannel(rawChannel)
		if err != nil {
			return nil, fmt.Errorf("message log %s: %w", entry.ID, err)
		}
		kind, err := domain.ParseKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("message log %s: %w", entry.ID, err)
		}
		entry.Channel = channel
		entry.Kind = kind

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
