package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicateEmail = errors.New("a lead with this email already exists")
)

const uniqueViolationCode = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          *string
	Source         string
	Message        *string
	Status         domain.Status
	CreatedAt      time.Time
	FirstContactAt *time.Time
	EmailSentAt    *time.Time
	WhatsAppSentAt *time.Time
	RepliedAt      *time.Time
	ReminderSentAt *time.Time
	LastTouchAt    *time.Time
}

const leadColumns = `id, name, email, phone, source, message, status,
		created_at, first_contact_at, email_sent_at, whatsapp_sent_at,
		replied_at, reminder_sent_at, last_touch_at`

// scanLead reads one lead row. The persisted status string goes through a
// validated decode; a row with an unknown status is an error, not a value.
func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var rawStatus string
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Source, &lead.Message, &rawStatus,
		&lead.CreatedAt, &lead.FirstContactAt, &lead.EmailSentAt, &lead.WhatsAppSentAt,
		&lead.RepliedAt, &lead.ReminderSentAt, &lead.LastTouchAt,
	)
	if err != nil {
		return Lead{}, err
	}

	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return Lead{}, fmt.Errorf("lead %s: %w", lead.ID, err)
	}
	lead.Status = status

	return lead, nil
}

type CreateLeadParams struct {
	Name    string
	Email   string
	Phone   *string
	Source  string
	Message *string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (id, name, email, phone, source, message, status, created_at, last_touch_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+leadColumns,
		uuid.New(), params.Name, params.Email, params.Phone, params.Source, params.Message,
		domain.StatusNew.String(), now,
	)

	lead, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Lead{}, ErrDuplicateEmail
		}
		return Lead{}, err
	}

	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type ListLeadsParams struct {
	Status *domain.Status
	Source *string
	Offset int
	Limit  int
}

func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)

	if params.Status != nil {
		args = append(args, params.Status.String())
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Source != nil {
		args = append(args, *params.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, params.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// ListReminderEligible selects leads due a reminder: contacted, never
// replied, first contact at or before the cutoff. The cutoff is computed
// once per scan so the whole batch is judged against one "now".
func (r *Repository) ListReminderEligible(ctx context.Context, cutoff time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status = $1 AND replied_at IS NULL AND first_contact_at <= $2
		ORDER BY first_contact_at ASC
	`, domain.StatusContacted.String(), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// TransitionParams carries a status change plus the timestamps it stamps.
// Nil timestamp fields are left untouched.
type TransitionParams struct {
	Status         domain.Status
	FirstContactAt *time.Time
	EmailSentAt    *time.Time
	WhatsAppSentAt *time.Time
	RepliedAt      *time.Time
	ReminderSentAt *time.Time
	LastTouchAt    time.Time
}

// ApplyTransition commits one lifecycle transition atomically: the lead
// update and its message-log appends share a single transaction, so a crash
// mid-transition leaves no partial log entries.
func (r *Repository) ApplyTransition(ctx context.Context, id uuid.UUID, params TransitionParams, logs []MessageLogParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	set := []string{"status = $2", "last_touch_at = $3"}
	args := []interface{}{id, params.Status.String(), params.LastTouchAt}

	appendSet := func(column string, value *time.Time) {
		if value != nil {
			args = append(args, *value)
			set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	appendSet("first_contact_at", params.FirstContactAt)
	appendSet("email_sent_at", params.EmailSentAt)
	appendSet("whatsapp_sent_at", params.WhatsAppSentAt)
	appendSet("replied_at", params.RepliedAt)
	appendSet("reminder_sent_at", params.ReminderSentAt)

	row := tx.QueryRow(ctx, `
		UPDATE leads SET `+strings.Join(set, ", ")+`
		WHERE id = $1
		RETURNING `+leadColumns, args...)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}

	for _, entry := range logs {
		if err := insertMessageLog(ctx, tx, id, entry); err != nil {
			return Lead{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, err
	}

	return lead, nil
}
