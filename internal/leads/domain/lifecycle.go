package domain

import "time"

// ReminderThreshold is how long a contacted lead may go without a reply
// before it becomes eligible for a reminder. Fixed, not per-lead.
const ReminderThreshold = 72 * time.Hour

// terminalStatuses are states where the lead has answered or the deal is
// decided; mark_replied and send_reminder are no-ops on these.
var terminalStatuses = map[Status]bool{
	StatusReplied: true,
	StatusWon:     true,
	StatusLost:    true,
}

// IsTerminal returns true if the lead has replied or the deal is decided.
func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

// CanMarkReplied reports whether mark_replied should transition the lead.
// On terminal statuses the operation is an idempotent no-op, not an error.
func CanMarkReplied(s Status) bool {
	return !IsTerminal(s)
}

// CanSendReminder reports whether send_reminder should fire. Only a
// contacted lead that has not been reminded is remindable; everything else
// is a no-op so that double invocation cannot double-send.
func CanSendReminder(s Status) bool {
	return s == StatusContacted
}

// ReminderEligible is the scheduler's selection predicate: contacted, never
// replied, and first contact at or before now minus the threshold. The same
// rule runs in SQL for the batch scan; this form guards individual
// transitions and is the reference for tests.
func ReminderEligible(status Status, repliedAt *time.Time, firstContactAt *time.Time, now time.Time) bool {
	if status != StatusContacted || repliedAt != nil || firstContactAt == nil {
		return false
	}
	return !firstContactAt.After(now.Add(-ReminderThreshold))
}
