// Seeds a handful of demo leads across the lifecycle so dashboards and the
// reminder sweep have something to show. Intended for local development only.
package main

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
)

type demoLead struct {
	name    string
	email   string
	phone   string
	source  string
	message string

	status       domain.Status
	contactedAgo time.Duration
	repliedAgo   time.Duration
	remindedAgo  time.Duration
	logs         []repository.MessageLogParams
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	seeded := 0

	for _, demo := range demoLeads() {
		if err := seedLead(ctx, repo, demo); err != nil {
			log.Warn("skipping demo lead", "email", demo.email, "error", err)
			continue
		}
		seeded++
	}

	log.Info("demo data seeding complete", "seeded", seeded)
}

func seedLead(ctx context.Context, repo *repository.Repository, demo demoLead) error {
	lead, err := repo.Create(ctx, repository.CreateLeadParams{
		Name:    demo.name,
		Email:   demo.email,
		Phone:   strPtr(demo.phone),
		Source:  demo.source,
		Message: strPtr(demo.message),
	})
	if err != nil {
		return err
	}

	if demo.status == domain.StatusNew {
		return nil
	}

	now := time.Now().UTC()
	params := repository.TransitionParams{
		Status:      demo.status,
		LastTouchAt: now,
	}
	if demo.contactedAgo > 0 {
		contactedAt := now.Add(-demo.contactedAgo)
		params.FirstContactAt = &contactedAt
		params.EmailSentAt = &contactedAt
		params.WhatsAppSentAt = &contactedAt
	}
	if demo.repliedAgo > 0 {
		repliedAt := now.Add(-demo.repliedAgo)
		params.RepliedAt = &repliedAt
	}
	if demo.remindedAgo > 0 {
		remindedAt := now.Add(-demo.remindedAgo)
		params.ReminderSentAt = &remindedAt
	}

	_, err = repo.ApplyTransition(ctx, lead.ID, params, demo.logs)
	return err
}

func demoLeads() []demoLead {
	const day = 24 * time.Hour

	firstTouchLogs := []repository.MessageLogParams{
		{Channel: domain.ChannelEmail, Kind: domain.KindFirstTouch, Success: true, ProviderResponse: "seeded"},
		{Channel: domain.ChannelWhatsApp, Kind: domain.KindFirstTouch, Success: true, ProviderResponse: "seeded"},
	}
	reminderLogs := append(append([]repository.MessageLogParams{}, firstTouchLogs...),
		repository.MessageLogParams{Channel: domain.ChannelEmail, Kind: domain.KindReminder, Success: true, ProviderResponse: "seeded"},
		repository.MessageLogParams{Channel: domain.ChannelWhatsApp, Kind: domain.KindReminder, Success: true, ProviderResponse: "seeded"},
	)

	return []demoLead{
		{
			name: "Alice Johnson", email: "alice.j@example.com", phone: "123-456-7890",
			source: "website", message: "Interested in pricing.",
			status: domain.StatusNew,
		},
		{
			name: "Bob Smith", email: "bob.s@example.com", phone: "987-654-3210",
			source: "facebook", message: "Saw your ad.",
			status: domain.StatusContacted, contactedAgo: 1 * day,
			logs: firstTouchLogs,
		},
		{
			name: "Charlie Brown", email: "charlie.b@example.com", phone: "555-123-4567",
			source: "referral", message: "Referred by a friend.",
			status: domain.StatusReminderSent, contactedAgo: 4 * day, remindedAgo: 1 * day,
			logs: reminderLogs,
		},
		{
			name: "Diana Prince", email: "diana.p@example.com", phone: "111-222-3333",
			source: "website", message: "Ready to buy.",
			status: domain.StatusReplied, contactedAgo: 5 * day, repliedAgo: 2 * day,
			logs: firstTouchLogs[:1],
		},
		{
			name: "Ethan Hunt", email: "ethan.h@example.com", phone: "444-555-6666",
			source: "referral", message: "Closed the deal.",
			status: domain.StatusWon, contactedAgo: 10 * day, repliedAgo: 8 * day,
		},
		{
			name: "Fiona Glenanne", email: "fiona.g@example.com", phone: "777-888-9999",
			source: "facebook", message: "Lost to competitor.",
			status: domain.StatusLost, contactedAgo: 7 * day,
		},
		{
			// Just over the follow-up threshold; picked up by the next sweep.
			name: "George Lucas", email: "george.l@example.com", phone: "000-111-2222",
			source: "website", message: "Testing reminder logic.",
			status: domain.StatusContacted, contactedAgo: 3*day + time.Hour,
			logs: firstTouchLogs[:1],
		},
		{
			name: "Hannah Montana", email: "hannah.m@example.com", phone: "123-000-4567",
			source: "website", message: "New lead 8",
			status: domain.StatusNew,
		},
		{
			name: "Ian Malcolm", email: "ian.m@example.com", phone: "987-111-6543",
			source: "referral", message: "New lead 9",
			status: domain.StatusNew,
		},
		{
			name: "Jane Doe", email: "jane.d@example.com", phone: "555-222-1234",
			source: "facebook", message: "New lead 10",
			status: domain.StatusNew,
		},
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
