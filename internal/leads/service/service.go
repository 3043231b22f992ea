package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
	"leadflow_backend/platform/validator"

	"github.com/google/uuid"
)

// Store is the persistence surface the lifecycle engine drives. Implemented
// by *repository.Repository; faked in tests.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, error)
	ListReminderEligible(ctx context.Context, cutoff time.Time) ([]repository.Lead, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, params repository.TransitionParams, logs []repository.MessageLogParams) (repository.Lead, error)
	ListMessages(ctx context.Context, leadID uuid.UUID) ([]repository.MessageLog, error)
	KPITotals(ctx context.Context) (repository.KPITotals, error)
}

// Service is the lead lifecycle engine. Every status transition and every
// message-log append goes through here.
type Service struct {
	store    Store
	email    ports.EmailSender
	whatsapp ports.WhatsAppSender
	val      *validator.Validator
	log      *logger.Logger
}

func New(store Store, email ports.EmailSender, whatsapp ports.WhatsAppSender, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{store: store, email: email, whatsapp: whatsapp, val: val, log: log}
}

// Create records a new lead and immediately runs the initial contact
// automation. The first touch runs exactly once, here; callers must not
// invoke it again for the same lead.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		Name:   req.Name,
		Email:  req.Email,
		Source: req.Source,
	}
	if req.Phone != "" {
		normalized := phone.NormalizeE164(req.Phone)
		params.Phone = &normalized
	}
	if req.Message != "" {
		params.Message = &req.Message
	}

	lead, err := s.store.Create(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.LeadResponse{}, apperr.Conflict(err.Error())
		}
		return transport.LeadResponse{}, err
	}

	lead, err = s.initialContact(ctx, lead)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	return toLeadResponse(lead), nil
}

// initialContact fires the first-touch email and WhatsApp trigger and
// advances NEW -> CONTACTED. Adapter failures are absorbed: the transition
// still commits, the corresponding sent_at stays unset, and the outcome is
// recorded in the message log.
func (s *Service) initialContact(ctx context.Context, lead repository.Lead) (repository.Lead, error) {
	now := time.Now().UTC()

	emailErr := s.email.SendFirstTouchEmail(ctx, lead.Email, lead.Name, lead.ID)
	whatsappErr := s.whatsapp.TriggerFirstTouch(ctx, whatsappContact(lead))

	params := repository.TransitionParams{
		Status:         domain.StatusContacted,
		FirstContactAt: &now,
		LastTouchAt:    now,
	}
	if emailErr == nil {
		params.EmailSentAt = &now
	}
	if whatsappErr == nil {
		params.WhatsAppSentAt = &now
	}

	logs := []repository.MessageLogParams{
		messageOutcome(domain.ChannelEmail, domain.KindFirstTouch, emailErr),
		messageOutcome(domain.ChannelWhatsApp, domain.KindFirstTouch, whatsappErr),
	}
	s.logOutcomes(lead.ID, logs)

	return s.store.ApplyTransition(ctx, lead.ID, params, logs)
}

// MarkReplied is idempotent: a lead that already replied, won or lost is
// returned unchanged, with no new message-log entries. replied_at is stamped
// at most once; re-marking a lead that was manually moved on after replying
// restores the status but keeps the original timestamp.
func (s *Service) MarkReplied(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if !domain.CanMarkReplied(lead.Status) {
		return toLeadResponse(lead), nil
	}

	now := time.Now().UTC()
	params := repository.TransitionParams{
		Status:      domain.StatusReplied,
		LastTouchAt: now,
	}
	if lead.RepliedAt == nil {
		params.RepliedAt = &now
	}

	updated, err := s.store.ApplyTransition(ctx, id, params, nil)
	if err != nil {
		return transport.LeadResponse{}, mapStoreErr(err)
	}

	return toLeadResponse(updated), nil
}

// SendReminder fires the reminder email and WhatsApp trigger and advances
// CONTACTED -> REMINDER_SENT. Guarded like MarkReplied: a lead that is not
// in CONTACTED is returned unchanged, so double invocation cannot
// double-send.
func (s *Service) SendReminder(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if !domain.CanSendReminder(lead.Status) {
		return toLeadResponse(lead), nil
	}

	updated, err := s.remind(ctx, lead)
	if err != nil {
		return transport.LeadResponse{}, mapStoreErr(err)
	}

	return toLeadResponse(updated), nil
}

func (s *Service) remind(ctx context.Context, lead repository.Lead) (repository.Lead, error) {
	now := time.Now().UTC()

	emailErr := s.email.SendReminderEmail(ctx, lead.Email, lead.Name, lead.ID)
	whatsappErr := s.whatsapp.TriggerReminder(ctx, whatsappContact(lead))

	params := repository.TransitionParams{
		Status:         domain.StatusReminderSent,
		ReminderSentAt: &now,
		LastTouchAt:    now,
	}

	logs := []repository.MessageLogParams{
		messageOutcome(domain.ChannelEmail, domain.KindReminder, emailErr),
		messageOutcome(domain.ChannelWhatsApp, domain.KindReminder, whatsappErr),
	}
	s.logOutcomes(lead.ID, logs)

	return s.store.ApplyTransition(ctx, lead.ID, params, logs)
}

// RemindOverdue is the scheduler entry point: one scan per tick against a
// single "now", then a synchronous reminder per eligible lead. The first
// failing lead aborts the remainder of the tick; its own transaction has
// already rolled back, and the next tick picks it up again.
func (s *Service) RemindOverdue(ctx context.Context) (eligible int, reminded int, err error) {
	now := time.Now().UTC()
	cutoff := now.Add(-domain.ReminderThreshold)

	leads, err := s.store.ListReminderEligible(ctx, cutoff)
	if err != nil {
		return 0, 0, err
	}

	for _, lead := range leads {
		if _, err := s.remind(ctx, lead); err != nil {
			return len(leads), reminded, fmt.Errorf("remind lead %s: %w", lead.ID, err)
		}
		reminded++
	}

	return len(leads), reminded, nil
}

// UpdateStatus is the manual override. It stamps last_touch_at only. A lead
// that has replied can never regress to NEW or CONTACTED.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if lead.RepliedAt != nil && (req.Status == domain.StatusNew || req.Status == domain.StatusContacted) {
		return transport.LeadResponse{}, apperr.Conflict("a replied lead cannot regress to " + req.Status.String())
	}

	updated, err := s.store.ApplyTransition(ctx, id, repository.TransitionParams{
		Status:      req.Status,
		LastTouchAt: time.Now().UTC(),
	}, nil)
	if err != nil {
		return transport.LeadResponse{}, mapStoreErr(err)
	}

	return toLeadResponse(updated), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListLeadsParams{
		Offset: req.Offset,
		Limit:  req.Limit,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation(err.Error())
		}
		params.Status = &status
	}
	if req.Source != "" {
		params.Source = &req.Source
	}
	if params.Limit <= 0 {
		params.Limit = 100
	}

	leads, err := s.store.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	return transport.LeadListResponse{Items: items, Offset: params.Offset, Limit: params.Limit}, nil
}

func (s *Service) ListMessages(ctx context.Context, id uuid.UUID) ([]transport.MessageLogResponse, error) {
	if _, err := s.getLead(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]transport.MessageLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, transport.MessageLogResponse{
			ID:               entry.ID,
			Channel:          entry.Channel,
			Kind:             entry.Kind,
			Success:          entry.Success,
			ProviderResponse: entry.ProviderResponse,
			SentAt:           entry.SentAt,
		})
	}

	return items, nil
}

// KPIs returns aggregate counts plus the won/total conversion rate formatted
// with two decimals ("0.00%" when there are no leads).
func (s *Service) KPIs(ctx context.Context) (transport.KPIResponse, error) {
	totals, err := s.store.KPITotals(ctx)
	if err != nil {
		return transport.KPIResponse{}, err
	}

	rate := 0.0
	if totals.Total > 0 {
		rate = float64(totals.Won) / float64(totals.Total) * 100
	}

	return transport.KPIResponse{
		TotalLeads:     totals.Total,
		Contacted:      totals.Contacted,
		Replied:        totals.Replied,
		RemindersSent:  totals.ReminderSent,
		Won:            totals.Won,
		ConversionRate: fmt.Sprintf("%.2f%%", rate),
	}, nil
}

func (s *Service) getLead(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, mapStoreErr(err)
	}
	return lead, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func whatsappContact(lead repository.Lead) ports.WhatsAppContact {
	contact := ports.WhatsAppContact{
		LeadID: lead.ID,
		Name:   lead.Name,
		Email:  lead.Email,
	}
	if lead.Phone != nil {
		contact.Phone = *lead.Phone
	}
	return contact
}

// messageOutcome turns one adapter result into its message-log append.
func messageOutcome(channel domain.Channel, kind domain.Kind, sendErr error) repository.MessageLogParams {
	params := repository.MessageLogParams{
		Channel: channel,
		Kind:    kind,
		Success: sendErr == nil,
	}
	if sendErr != nil {
		params.ProviderResponse = sendErr.Error()
	} else {
		params.ProviderResponse = "delivered to provider"
	}
	return params
}

func (s *Service) logOutcomes(leadID uuid.UUID, logs []repository.MessageLogParams) {
	if s.log == nil {
		return
	}
	for _, entry := range logs {
		s.log.NotificationEvent(string(entry.Channel), string(entry.Kind), leadID.String(), entry.Success, entry.ProviderResponse)
	}
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Source:         lead.Source,
		Message:        lead.Message,
		Status:         lead.Status,
		CreatedAt:      lead.CreatedAt,
		FirstContactAt: lead.FirstContactAt,
		EmailSentAt:    lead.EmailSentAt,
		WhatsAppSentAt: lead.WhatsAppSentAt,
		RepliedAt:      lead.RepliedAt,
		ReminderSentAt: lead.ReminderSentAt,
		LastTouchAt:    lead.LastTouchAt,
	}
}
