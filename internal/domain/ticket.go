package domain

// Ticket is an active work item. Number is operator supplied and not unique.
type Ticket struct {
	Number  string
	Name    string
	Status  Status
	LogDate Timestamp
}

// ArchivedTicket is a ticket relocated into the archive when it reached Done.
// It is never mutated after it is written.
type ArchivedTicket struct {
	Ticket
	ClosingDate Timestamp
	Team        Team
}
