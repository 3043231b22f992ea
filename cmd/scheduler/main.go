// Standalone reminder sweeper. Runs the same follow-up job as the API
// process; deploy it separately when the API runs with multiple replicas.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"leadflow_backend/internal/email"
	"leadflow_backend/internal/leads/replytoken"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/internal/whatsapp"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"
)

func main() {
	once := flag.Bool("once", false, "run a single reminder sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting reminder scheduler", "env", cfg.Env, "interval", cfg.ReminderCheckInterval.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	val := validator.New()
	tokens := replytoken.NewSigner(cfg.SecretKey, cfg.ReplyTokenTTL)
	sender := email.NewSender(cfg, cfg, tokens, log)
	whatsappClient := whatsapp.NewClient(cfg, log)

	svc := service.New(repository.New(pool), sender, whatsappClient, val, log)
	job := scheduler.NewReminderJob(svc, log, cfg.ReminderCheckInterval)

	if *once {
		job.RunOnce(ctx)
		return
	}

	job.Run(ctx)
	log.Info("reminder scheduler stopped")
}
