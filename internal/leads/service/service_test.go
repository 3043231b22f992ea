package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/validator"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store that records applied transitions.
type fakeStore struct {
	leads    map[uuid.UUID]repository.Lead
	logs     map[uuid.UUID][]repository.MessageLogParams
	eligible []repository.Lead

	createErr     error
	transitionErr error
	failOnLead    uuid.UUID
	totals        repository.KPITotals
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads: make(map[uuid.UUID]repository.Lead),
		logs:  make(map[uuid.UUID][]repository.MessageLogParams),
	}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	if f.createErr != nil {
		return repository.Lead{}, f.createErr
	}

	lead := repository.Lead{
		ID:        uuid.New(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Source:    params.Source,
		Message:   params.Message,
		Status:    domain.StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListLeadsParams) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeStore) ListReminderEligible(_ context.Context, _ time.Time) ([]repository.Lead, error) {
	return f.eligible, nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, id uuid.UUID, params repository.TransitionParams, logs []repository.MessageLogParams) (repository.Lead, error) {
	if f.transitionErr != nil && (f.failOnLead == uuid.Nil || f.failOnLead == id) {
		return repository.Lead{}, f.transitionErr
	}

	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}

	lead.Status = params.Status
	lead.LastTouchAt = &params.LastTouchAt
	if params.FirstContactAt != nil {
		lead.FirstContactAt = params.FirstContactAt
	}
	if params.EmailSentAt != nil {
		lead.EmailSentAt = params.EmailSentAt
	}
	if params.WhatsAppSentAt != nil {
		lead.WhatsAppSentAt = params.WhatsAppSentAt
	}
	if params.RepliedAt != nil {
		lead.RepliedAt = params.RepliedAt
	}
	if params.ReminderSentAt != nil {
		lead.ReminderSentAt = params.ReminderSentAt
	}

	f.leads[id] = lead
	f.logs[id] = append(f.logs[id], logs...)
	return lead, nil
}

func (f *fakeStore) ListMessages(_ context.Context, leadID uuid.UUID) ([]repository.MessageLog, error) {
	entries := make([]repository.MessageLog, 0, len(f.logs[leadID]))
	for _, params := range f.logs[leadID] {
		resp := params.ProviderResponse
		entries = append(entries, repository.MessageLog{
			ID:               uuid.New(),
			LeadID:           leadID,
			Channel:          params.Channel,
			Kind:             params.Kind,
			Success:          params.Success,
			ProviderResponse: &resp,
			SentAt:           time.Now().UTC(),
		})
	}
	return entries, nil
}

func (f *fakeStore) KPITotals(_ context.Context) (repository.KPITotals, error) {
	return f.totals, nil
}

type fakeEmail struct {
	firstTouch int
	reminders  int
	err        error
}

func (f *fakeEmail) SendFirstTouchEmail(_ context.Context, _, _ string, _ uuid.UUID) error {
	f.firstTouch++
	return f.err
}

func (f *fakeEmail) SendReminderEmail(_ context.Context, _, _ string, _ uuid.UUID) error {
	f.reminders++
	return f.err
}

type fakeWhatsApp struct {
	firstTouch int
	reminders  int
	err        error
}

func (f *fakeWhatsApp) TriggerFirstTouch(_ context.Context, _ ports.WhatsAppContact) error {
	f.firstTouch++
	return f.err
}

func (f *fakeWhatsApp) TriggerReminder(_ context.Context, _ ports.WhatsAppContact) error {
	f.reminders++
	return f.err
}

func newTestService(store *fakeStore, email *fakeEmail, whatsapp *fakeWhatsApp) *Service {
	return New(store, email, whatsapp, validator.New(), nil)
}

func seedLead(store *fakeStore, status domain.Status) repository.Lead {
	lead := repository.Lead{
		ID:        uuid.New(),
		Name:      "Alice Johnson",
		Email:     "alice@example.com",
		Source:    "website",
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if status != domain.StatusNew {
		contactedAt := time.Now().UTC().Add(-4 * 24 * time.Hour)
		lead.FirstContactAt = &contactedAt
	}
	store.leads[lead.ID] = lead
	return lead
}

func TestCreateRunsInitialContact(t *testing.T) {
	store := newFakeStore()
	email := &fakeEmail{}
	whatsapp := &fakeWhatsApp{}
	svc := newTestService(store, email, whatsapp)

	resp, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Name:   "Alice Johnson",
		Email:  "alice@example.com",
		Phone:  "+919876543210",
		Source: "website",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if resp.Status != domain.StatusContacted {
		t.Errorf("status = %s, want CONTACTED", resp.Status)
	}
	if resp.FirstContactAt == nil || resp.EmailSentAt == nil || resp.WhatsAppSentAt == nil {
		t.Error("expected first contact and sent timestamps to be stamped")
	}
	if email.firstTouch != 1 || whatsapp.firstTouch != 1 {
		t.Errorf("adapter calls = email %d, whatsapp %d, want 1 each", email.firstTouch, whatsapp.firstTouch)
	}

	logs := store.logs[resp.ID]
	if len(logs) != 2 {
		t.Fatalf("message log entries = %d, want 2", len(logs))
	}
	for _, entry := range logs {
		if entry.Kind != domain.KindFirstTouch {
			t.Errorf("log kind = %s, want FIRST_TOUCH", entry.Kind)
		}
		if !entry.Success {
			t.Errorf("log success = false for channel %s", entry.Channel)
		}
	}
}

func TestCreateWithFailingEmailStillTransitions(t *testing.T) {
	store := newFakeStore()
	email := &fakeEmail{err: errors.New("smtp timeout")}
	whatsapp := &fakeWhatsApp{}
	svc := newTestService(store, email, whatsapp)

	resp, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Name:   "Bob Smith",
		Email:  "bob@example.com",
		Source: "facebook",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if resp.Status != domain.StatusContacted {
		t.Errorf("status = %s, want CONTACTED despite email failure", resp.Status)
	}
	if resp.EmailSentAt != nil {
		t.Error("email_sent_at should stay unset when sending failed")
	}
	if resp.WhatsAppSentAt == nil {
		t.Error("whatsapp_sent_at should be stamped when the trigger succeeded")
	}

	var emailLog *repository.MessageLogParams
	for i := range store.logs[resp.ID] {
		if store.logs[resp.ID][i].Channel == domain.ChannelEmail {
			emailLog = &store.logs[resp.ID][i]
		}
	}
	if emailLog == nil {
		t.Fatal("missing email message log entry")
	}
	if emailLog.Success {
		t.Error("email log should record failure")
	}
	if emailLog.ProviderResponse != "smtp timeout" {
		t.Errorf("provider response = %q, want the adapter error", emailLog.ProviderResponse)
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	store := newFakeStore()
	store.createErr = repository.ErrDuplicateEmail
	svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Name:   "Alice Johnson",
		Email:  "alice@example.com",
		Source: "website",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestMarkRepliedIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})
	lead := seedLead(store, domain.StatusContacted)

	first, err := svc.MarkReplied(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("MarkReplied returned error: %v", err)
	}
	if first.Status != domain.StatusReplied || first.RepliedAt == nil {
		t.Fatalf("first MarkReplied: status = %s, repliedAt = %v", first.Status, first.RepliedAt)
	}

	second, err := svc.MarkReplied(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("second MarkReplied returned error: %v", err)
	}
	if second.Status != domain.StatusReplied {
		t.Errorf("second MarkReplied status = %s, want REPLIED", second.Status)
	}
	if !second.RepliedAt.Equal(*first.RepliedAt) {
		t.Error("second MarkReplied must not move replied_at")
	}
	if len(store.logs[lead.ID]) != 0 {
		t.Errorf("MarkReplied wrote %d message logs, want 0", len(store.logs[lead.ID]))
	}
}

func TestMarkRepliedKeepsOriginalTimestampAfterReopen(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})

	// Replied an hour ago, then manually moved back into the pipeline.
	lead := seedLead(store, domain.StatusInProgress)
	repliedAt := time.Now().UTC().Add(-time.Hour)
	lead.RepliedAt = &repliedAt
	store.leads[lead.ID] = lead

	resp, err := svc.MarkReplied(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("MarkReplied returned error: %v", err)
	}
	if resp.Status != domain.StatusReplied {
		t.Errorf("status = %s, want REPLIED", resp.Status)
	}
	if resp.RepliedAt == nil || !resp.RepliedAt.Equal(repliedAt) {
		t.Errorf("repliedAt = %v, want the original %v; replied_at is stamped at most once", resp.RepliedAt, repliedAt)
	}
}

func TestLastTouchAtNeverBeforeCreatedAt(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})

	created, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Name:   "Alice Johnson",
		Email:  "alice@example.com",
		Source: "website",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.LastTouchAt == nil || created.LastTouchAt.Before(created.CreatedAt) {
		t.Fatalf("lastTouchAt = %v, must not precede createdAt %v", created.LastTouchAt, created.CreatedAt)
	}
	prev := *created.LastTouchAt

	steps := []func() (transport.LeadResponse, error){
		func() (transport.LeadResponse, error) { return svc.SendReminder(context.Background(), created.ID) },
		func() (transport.LeadResponse, error) { return svc.MarkReplied(context.Background(), created.ID) },
		func() (transport.LeadResponse, error) {
			return svc.UpdateStatus(context.Background(), created.ID, transport.UpdateLeadStatusRequest{Status: domain.StatusWon})
		},
	}
	for i, step := range steps {
		resp, err := step()
		if err != nil {
			t.Fatalf("step %d returned error: %v", i, err)
		}
		if resp.LastTouchAt == nil || resp.LastTouchAt.Before(prev) {
			t.Fatalf("step %d: lastTouchAt = %v went backwards from %v", i, resp.LastTouchAt, prev)
		}
		prev = *resp.LastTouchAt
	}
}

func TestMarkRepliedUnknownLead(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeEmail{}, &fakeWhatsApp{})

	_, err := svc.MarkReplied(context.Background(), uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSendReminderGuard(t *testing.T) {
	store := newFakeStore()
	email := &fakeEmail{}
	whatsapp := &fakeWhatsApp{}
	svc := newTestService(store, email, whatsapp)
	lead := seedLead(store, domain.StatusContacted)

	first, err := svc.SendReminder(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("SendReminder returned error: %v", err)
	}
	if first.Status != domain.StatusReminderSent || first.ReminderSentAt == nil {
		t.Fatalf("first SendReminder: status = %s, reminderSentAt = %v", first.Status, first.ReminderSentAt)
	}
	if len(store.logs[lead.ID]) != 2 {
		t.Fatalf("reminder logs = %d, want 2", len(store.logs[lead.ID]))
	}

	// Second invocation hits the status guard and must not send again.
	second, err := svc.SendReminder(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("second SendReminder returned error: %v", err)
	}
	if second.Status != domain.StatusReminderSent {
		t.Errorf("second SendReminder status = %s, want REMINDER_SENT", second.Status)
	}
	if email.reminders != 1 || whatsapp.reminders != 1 {
		t.Errorf("reminder sends = email %d, whatsapp %d, want 1 each", email.reminders, whatsapp.reminders)
	}
	if len(store.logs[lead.ID]) != 2 {
		t.Errorf("reminder logs after repeat = %d, want still 2", len(store.logs[lead.ID]))
	}
}

func TestRemindOverdueBatch(t *testing.T) {
	store := newFakeStore()
	email := &fakeEmail{}
	whatsapp := &fakeWhatsApp{}
	svc := newTestService(store, email, whatsapp)

	for i := 0; i < 3; i++ {
		lead := seedLead(store, domain.StatusContacted)
		lead.Email = uuid.NewString() + "@example.com"
		store.leads[lead.ID] = lead
		store.eligible = append(store.eligible, lead)
	}

	eligible, reminded, err := svc.RemindOverdue(context.Background())
	if err != nil {
		t.Fatalf("RemindOverdue returned error: %v", err)
	}
	if eligible != 3 || reminded != 3 {
		t.Errorf("eligible = %d, reminded = %d, want 3 and 3", eligible, reminded)
	}
	if email.reminders != 3 || whatsapp.reminders != 3 {
		t.Errorf("sends = email %d, whatsapp %d, want 3 each", email.reminders, whatsapp.reminders)
	}

	for _, lead := range store.eligible {
		if store.leads[lead.ID].Status != domain.StatusReminderSent {
			t.Errorf("lead %s status = %s, want REMINDER_SENT", lead.ID, store.leads[lead.ID].Status)
		}
	}
}

func TestRemindOverdueAbortsOnFirstFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})

	first := seedLead(store, domain.StatusContacted)
	second := seedLead(store, domain.StatusContacted)
	store.eligible = []repository.Lead{first, second}
	store.transitionErr = errors.New("connection reset")
	store.failOnLead = first.ID

	eligible, reminded, err := svc.RemindOverdue(context.Background())
	if err == nil {
		t.Fatal("expected error when a transition fails")
	}
	if eligible != 2 {
		t.Errorf("eligible = %d, want 2", eligible)
	}
	if reminded != 0 {
		t.Errorf("reminded = %d, want 0 because the first lead aborts the batch", reminded)
	}
	if store.leads[second.ID].Status != domain.StatusContacted {
		t.Error("second lead must be left untouched after the batch aborts")
	}
}

func TestUpdateStatusRegressionBlocked(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})

	lead := seedLead(store, domain.StatusReplied)
	repliedAt := time.Now().UTC().Add(-time.Hour)
	lead.RepliedAt = &repliedAt
	store.leads[lead.ID] = lead

	for _, target := range []domain.Status{domain.StatusNew, domain.StatusContacted} {
		_, err := svc.UpdateStatus(context.Background(), lead.ID, transport.UpdateLeadStatusRequest{Status: target})
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
			t.Errorf("regression to %s: expected conflict, got %v", target, err)
		}
	}

	// Forward moves stay allowed.
	resp, err := svc.UpdateStatus(context.Background(), lead.ID, transport.UpdateLeadStatusRequest{Status: domain.StatusWon})
	if err != nil {
		t.Fatalf("UpdateStatus to WON returned error: %v", err)
	}
	if resp.Status != domain.StatusWon {
		t.Errorf("status = %s, want WON", resp.Status)
	}
}

func TestKPIsConversionRate(t *testing.T) {
	tests := []struct {
		name   string
		totals repository.KPITotals
		want   string
	}{
		{"no leads", repository.KPITotals{}, "0.00%"},
		{"one of four won", repository.KPITotals{Total: 4, Won: 1}, "25.00%"},
		{"all won", repository.KPITotals{Total: 3, Won: 3}, "100.00%"},
		{"thirds round to two decimals", repository.KPITotals{Total: 3, Won: 1}, "33.33%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.totals = tt.totals
			svc := newTestService(store, &fakeEmail{}, &fakeWhatsApp{})

			resp, err := svc.KPIs(context.Background())
			if err != nil {
				t.Fatalf("KPIs returned error: %v", err)
			}
			if resp.ConversionRate != tt.want {
				t.Errorf("conversion rate = %s, want %s", resp.ConversionRate, tt.want)
			}
		})
	}
}
