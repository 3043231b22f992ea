// Package scheduler runs the periodic jobs that drive lead follow-up.
package scheduler

import (
	"context"
	"time"

	"leadflow_backend/platform/logger"
)

const defaultReminderInterval = time.Hour

// ReminderService is the slice of the lead lifecycle engine the job needs.
type ReminderService interface {
	RemindOverdue(ctx context.Context) (eligible, reminded int, err error)
}

// ReminderJob periodically sweeps for leads whose first contact went
// unanswered and sends them a follow-up.
type ReminderJob struct {
	svc      ReminderService
	log      *logger.Logger
	interval time.Duration
}

func NewReminderJob(svc ReminderService, log *logger.Logger, interval time.Duration) *ReminderJob {
	if interval <= 0 {
		interval = defaultReminderInterval
	}

	return &ReminderJob{
		svc:      svc,
		log:      log,
		interval: interval,
	}
}

// Run sweeps immediately, then on every tick until the context is cancelled.
func (j *ReminderJob) Run(ctx context.Context) {
	if j == nil || j.svc == nil {
		return
	}

	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reminder sweep.
func (j *ReminderJob) RunOnce(ctx context.Context) {
	if j == nil || j.svc == nil {
		return
	}

	eligible, reminded, err := j.svc.RemindOverdue(ctx)
	j.log.SchedulerRun(eligible, reminded, err)
}
