package domain

import (
	"testing"
	"time"
)

func TestParseStatusRejectsUnknownValues(t *testing.T) {
	for _, valid := range []string{"NEW", "CONTACTED", "REPLIED", "REMINDER_SENT", "IN_PROGRESS", "WON", "LOST"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "new", "PENDING", "WON "} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", invalid)
		}
	}
}

func TestParseChannelAndKind(t *testing.T) {
	if _, err := ParseChannel("EMAIL"); err != nil {
		t.Errorf("ParseChannel(EMAIL) returned error: %v", err)
	}
	if _, err := ParseChannel("SMS"); err == nil {
		t.Error("ParseChannel(SMS) expected error, got nil")
	}
	if _, err := ParseKind("MANUAL"); err != nil {
		t.Errorf("ParseKind(MANUAL) returned error: %v", err)
	}
	if _, err := ParseKind("AUTO"); err == nil {
		t.Error("ParseKind(AUTO) expected error, got nil")
	}
}

func TestCanMarkReplied(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusNew, true},
		{StatusContacted, true},
		{StatusReminderSent, true},
		{StatusInProgress, true},
		{StatusReplied, false},
		{StatusWon, false},
		{StatusLost, false},
	}

	for _, tt := range tests {
		if got := CanMarkReplied(tt.status); got != tt.want {
			t.Errorf("CanMarkReplied(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanSendReminderOnlyFromContacted(t *testing.T) {
	for _, status := range []Status{StatusNew, StatusReplied, StatusReminderSent, StatusInProgress, StatusWon, StatusLost} {
		if CanSendReminder(status) {
			t.Errorf("CanSendReminder(%s) = true, want false", status)
		}
	}
	if !CanSendReminder(StatusContacted) {
		t.Error("CanSendReminder(CONTACTED) = false, want true")
	}
}

func TestReminderEligibleThresholdBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	justOver := now.Add(-ReminderThreshold - time.Hour)
	justUnder := now.Add(-ReminderThreshold + time.Hour)
	exactly := now.Add(-ReminderThreshold)

	tests := []struct {
		name           string
		status         Status
		repliedAt      *time.Time
		firstContactAt *time.Time
		want           bool
	}{
		{"contacted just over threshold", StatusContacted, nil, &justOver, true},
		{"contacted exactly at threshold", StatusContacted, nil, &exactly, true},
		{"contacted just under threshold", StatusContacted, nil, &justUnder, false},
		{"already replied", StatusContacted, &justUnder, &justOver, false},
		{"never contacted", StatusContacted, nil, nil, false},
		{"wrong status", StatusReminderSent, nil, &justOver, false},
		{"new lead", StatusNew, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReminderEligible(tt.status, tt.repliedAt, tt.firstContactAt, now)
			if got != tt.want {
				t.Errorf("ReminderEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
