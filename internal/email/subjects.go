package email

const (
	subjectFirstTouchFmt = "Thanks for reaching out, %s"
	subjectReminderFmt   = "Quick follow-up, %s"
)
