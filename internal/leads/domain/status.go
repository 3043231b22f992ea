// Package domain provides core business rules for the leads bounded context.
package domain

import "fmt"

// Status is the closed set of lead lifecycle states. It is persisted as text;
// persisted values must pass through ParseStatus before being trusted.
type Status string

const (
	StatusNew          Status = "NEW"
	StatusContacted    Status = "CONTACTED"
	StatusReplied      Status = "REPLIED"
	StatusReminderSent Status = "REMINDER_SENT"
	StatusInProgress   Status = "IN_PROGRESS"
	StatusWon          Status = "WON"
	StatusLost         Status = "LOST"
)

var validStatuses = map[Status]bool{
	StatusNew:          true,
	StatusContacted:    true,
	StatusReplied:      true,
	StatusReminderSent: true,
	StatusInProgress:   true,
	StatusWon:          true,
	StatusLost:         true,
}

// ParseStatus decodes a stored status value, rejecting anything outside the
// closed set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !validStatuses[s] {
		return "", fmt.Errorf("invalid lead status %q", raw)
	}
	return s, nil
}

func (s Status) String() string { return string(s) }

// Channel identifies the outbound notification channel of a message log entry.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelWhatsApp Channel = "WHATSAPP"
)

var validChannels = map[Channel]bool{
	ChannelEmail:    true,
	ChannelWhatsApp: true,
}

// ParseChannel decodes a stored channel value.
func ParseChannel(raw string) (Channel, error) {
	c := Channel(raw)
	if !validChannels[c] {
		return "", fmt.Errorf("invalid message channel %q", raw)
	}
	return c, nil
}

// Kind identifies why a message was sent.
type Kind string

const (
	KindFirstTouch Kind = "FIRST_TOUCH"
	KindReminder   Kind = "REMINDER"
	// KindManual exists in the persisted enum domain but no automated
	// transition emits it.
	KindManual Kind = "MANUAL"
)

var validKinds = map[Kind]bool{
	KindFirstTouch: true,
	KindReminder:   true,
	KindManual:     true,
}

// ParseKind decodes a stored message kind value.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if !validKinds[k] {
		return "", fmt.Errorf("invalid message kind %q", raw)
	}
	return k, nil
}
