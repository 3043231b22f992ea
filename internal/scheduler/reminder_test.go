package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadflow_backend/platform/logger"
)

type fakeReminderService struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeReminderService) RemindOverdue(_ context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 0, 0, nil
}

func (f *fakeReminderService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunOnceInvokesService(t *testing.T) {
	svc := &fakeReminderService{}
	job := NewReminderJob(svc, logger.New("test"), time.Hour)

	job.RunOnce(context.Background())

	if svc.callCount() != 1 {
		t.Errorf("calls = %d, want 1", svc.callCount())
	}
}

func TestRunSweepsImmediatelyAndOnTick(t *testing.T) {
	svc := &fakeReminderService{}
	job := NewReminderJob(svc, logger.New("test"), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for svc.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("calls = %d after deadline, want at least 2", svc.callCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestRunOnceToleratesMissingService(t *testing.T) {
	var nilJob *ReminderJob
	nilJob.RunOnce(context.Background())

	job := NewReminderJob(nil, logger.New("test"), time.Hour)
	job.RunOnce(context.Background())
}

func TestNewReminderJobDefaultsInterval(t *testing.T) {
	job := NewReminderJob(&fakeReminderService{}, logger.New("test"), 0)
	if job.interval != defaultReminderInterval {
		t.Errorf("interval = %s, want %s", job.interval, defaultReminderInterval)
	}
}
