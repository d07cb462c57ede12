package domain

// Reminder is an active personal reminder identified by its name.
type Reminder struct {
	Name        string
	Description string
	Status      Status
	LogDate     Timestamp
}

// ArchivedReminder is a reminder relocated into the archive when it reached Done.
type ArchivedReminder struct {
	Reminder
	ClosingDate Timestamp
}
