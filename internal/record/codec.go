// Package record maps tracker records to and from store rows. Column order is
// fixed by each header; decoding trusts the width check done by the store and
// carries unknown status values through unchanged.
package record

import "github.com/spec-kit/ticket-tracker/internal/domain"

// Codec describes one record kind: its header, its row mapping and the field
// that identifies it.
type Codec[T any] struct {
	Header []string
	Encode func(T) []string
	Decode func([]string) T
	ID     func(T) string
}

// Width is the number of columns in a row of this kind.
func (c Codec[T]) Width() int {
	return len(c.Header)
}

var (
	TicketHeader           = []string{"Ticket Number", "Ticket Name", "Status", "Log Date"}
	ArchivedTicketHeader   = []string{"Ticket Number", "Ticket Name", "Status", "Log Date", "Closing Date", "Team"}
	ReminderHeader         = []string{"Reminder Name", "Description", "Status", "Log Date"}
	ArchivedReminderHeader = []string{"Reminder Name", "Description", "Status", "Log Date", "Closing Date"}
)

// Tickets is the codec for the active ticket store.
func Tickets() Codec[domain.Ticket] {
	return Codec[domain.Ticket]{
		Header: TicketHeader,
		Encode: encodeTicket,
		Decode: decodeTicket,
		ID:     func(t domain.Ticket) string { return t.Number },
	}
}

// ArchivedTickets is the codec for the ticket archive.
func ArchivedTickets() Codec[domain.ArchivedTicket] {
	return Codec[domain.ArchivedTicket]{
		Header: ArchivedTicketHeader,
		Encode: func(t domain.ArchivedTicket) []string {
			return append(encodeTicket(t.Ticket), string(t.ClosingDate), string(t.Team))
		},
		Decode: func(row []string) domain.ArchivedTicket {
			return domain.ArchivedTicket{
				Ticket:      decodeTicket(row),
				ClosingDate: domain.Timestamp(field(row, 4)),
				Team:        domain.Team(field(row, 5)),
			}
		},
		ID: func(t domain.ArchivedTicket) string { return t.Number },
	}
}

// Reminders is the codec for the active reminder store.
func Reminders() Codec[domain.Reminder] {
	return Codec[domain.Reminder]{
		Header: ReminderHeader,
		Encode: encodeReminder,
		Decode: decodeReminder,
		ID:     func(r domain.Reminder) string { return r.Name },
	}
}

// ArchivedReminders is the codec for the reminder archive.
func ArchivedReminders() Codec[domain.ArchivedReminder] {
	return Codec[domain.ArchivedReminder]{
		Header: ArchivedReminderHeader,
		Encode: func(r domain.ArchivedReminder) []string {
			return append(encodeReminder(r.Reminder), string(r.ClosingDate))
		},
		Decode: func(row []string) domain.ArchivedReminder {
			return domain.ArchivedReminder{
				Reminder:    decodeReminder(row),
				ClosingDate: domain.Timestamp(field(row, 4)),
			}
		},
		ID: func(r domain.ArchivedReminder) string { return r.Name },
	}
}

func encodeTicket(t domain.Ticket) []string {
	return []string{t.Number, t.Name, string(t.Status), string(t.LogDate)}
}

func decodeTicket(row []string) domain.Ticket {
	return domain.Ticket{
		Number:  field(row, 0),
		Name:    field(row, 1),
		Status:  domain.Status(field(row, 2)),
		LogDate: domain.Timestamp(field(row, 3)),
	}
}

func encodeReminder(r domain.Reminder) []string {
	return []string{r.Name, r.Description, string(r.Status), string(r.LogDate)}
}

func decodeReminder(row []string) domain.Reminder {
	return domain.Reminder{
		Name:        field(row, 0),
		Description: field(row, 1),
		Status:      domain.Status(field(row, 2)),
		LogDate:     domain.Timestamp(field(row, 3)),
	}
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
