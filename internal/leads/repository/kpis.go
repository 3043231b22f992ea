package repository

import (
	"context"

	"leadflow_backend/internal/leads/domain"
)

// KPITotals holds the aggregate lead counts behind the dashboard numbers.
type KPITotals struct {
	Total        int
	Contacted    int
	Replied      int
	ReminderSent int
	Won          int
}

func (r *Repository) KPITotals(ctx context.Context) (KPITotals, error) {
	var totals KPITotals
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM leads
	`, domain.StatusContacted.String(), domain.StatusReplied.String(),
		domain.StatusReminderSent.String(), domain.StatusWon.String(),
	).Scan(&totals.Total, &totals.Contacted, &totals.Replied, &totals.ReminderSent, &totals.Won)
	if err != nil {
		return KPITotals{}, err
	}

	return totals, nil
}
