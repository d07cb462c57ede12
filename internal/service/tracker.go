package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/record"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/tabular"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TicketLifecycle is the engine instantiated for tickets.
type TicketLifecycle = Lifecycle[domain.Ticket, domain.ArchivedTicket]

// ReminderLifecycle is the engine instantiated for reminders.
type ReminderLifecycle = Lifecycle[domain.Reminder, domain.ArchivedReminder]

// Tracker fronts the ticket and reminder engines.
type Tracker struct {
	Tickets   *TicketLifecycle
	Reminders *ReminderLifecycle
}

// TrackerDependencies bundles configuration and collaborators for the tracker.
type TrackerDependencies struct {
	Storage    config.StorageConfig
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTracker opens the four store files named by deps.Storage. Files are not
// touched until Init.
func NewTracker(deps TrackerDependencies) (*Tracker, error) {
	tickets, err := repository.OpenTable(deps.Storage.Path(deps.Storage.TicketsFile), record.Tickets(), deps.Logger, recorder(deps.Metrics))
	if err != nil {
		return nil, err
	}
	archivedTickets, err := repository.OpenTable(deps.Storage.Path(deps.Storage.ArchiveTicketsFile), record.ArchivedTickets(), deps.Logger, recorder(deps.Metrics))
	if err != nil {
		return nil, err
	}
	reminders, err := repository.OpenTable(deps.Storage.Path(deps.Storage.RemindersFile), record.Reminders(), deps.Logger, recorder(deps.Metrics))
	if err != nil {
		return nil, err
	}
	archivedReminders, err := repository.OpenTable(deps.Storage.Path(deps.Storage.ArchiveRemindersFile), record.ArchivedReminders(), deps.Logger, recorder(deps.Metrics))
	if err != nil {
		return nil, err
	}

	lifecycleDeps := LifecycleDependencies{
		Clock:      deps.Clock,
		Dispatcher: deps.Dispatcher,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}
	ticketEngine, err := NewLifecycle(TicketSpec(tickets, archivedTickets), lifecycleDeps)
	if err != nil {
		return nil, err
	}
	reminderEngine, err := NewLifecycle(ReminderSpec(reminders, archivedReminders), lifecycleDeps)
	if err != nil {
		return nil, err
	}
	return &Tracker{Tickets: ticketEngine, Reminders: reminderEngine}, nil
}

// Init creates or repairs every store file.
func (t *Tracker) Init() error {
	if err := t.Tickets.Init(); err != nil {
		return err
	}
	return t.Reminders.Init()
}

// AddTicket records a new active ticket.
func (t *Tracker) AddTicket(ctx context.Context, number, name string, status domain.Status) (domain.Ticket, error) {
	return t.Tickets.Add(ctx, domain.Ticket{
		Number: strings.TrimSpace(number),
		Name:   strings.TrimSpace(name),
		Status: status,
	})
}

// AddReminder records a new active reminder.
func (t *Tracker) AddReminder(ctx context.Context, name, description string, status domain.Status) (domain.Reminder, error) {
	return t.Reminders.Add(ctx, domain.Reminder{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Status:      status,
	})
}

// TicketSpec wires tickets into the lifecycle. Archiving requires a team.
func TicketSpec(active *repository.Table[domain.Ticket], archive *repository.Table[domain.ArchivedTicket]) KindSpec[domain.Ticket, domain.ArchivedTicket] {
	return KindSpec[domain.Ticket, domain.ArchivedTicket]{
		Kind:    domain.KindTicket,
		Active:  active,
		Archive: archive,
		Status:  func(t domain.Ticket) domain.Status { return t.Status },
		WithStatus: func(t domain.Ticket, s domain.Status) domain.Ticket {
			t.Status = s
			return t
		},
		LogDate: func(t domain.Ticket) domain.Timestamp { return t.LogDate },
		WithLogDate: func(t domain.Ticket, ts domain.Timestamp) domain.Ticket {
			t.LogDate = ts
			return t
		},
		ToArchived: func(t domain.Ticket, closing domain.Timestamp, c Classification) (domain.ArchivedTicket, error) {
			team, ok := domain.ParseTeam(string(c.Team))
			if !ok {
				return domain.ArchivedTicket{}, apperrors.NewMissingClassification("a team (Asset or EUS) is required to close a ticket")
			}
			return domain.ArchivedTicket{Ticket: t, ClosingDate: closing, Team: team}, nil
		},
	}
}

// ReminderSpec wires reminders into the lifecycle.
func ReminderSpec(active *repository.Table[domain.Reminder], archive *repository.Table[domain.ArchivedReminder]) KindSpec[domain.Reminder, domain.ArchivedReminder] {
	return KindSpec[domain.Reminder, domain.ArchivedReminder]{
		Kind:    domain.KindReminder,
		Active:  active,
		Archive: archive,
		Status:  func(r domain.Reminder) domain.Status { return r.Status },
		WithStatus: func(r domain.Reminder, s domain.Status) domain.Reminder {
			r.Status = s
			return r
		},
		LogDate: func(r domain.Reminder) domain.Timestamp { return r.LogDate },
		WithLogDate: func(r domain.Reminder, ts domain.Timestamp) domain.Reminder {
			r.LogDate = ts
			return r
		},
		ToArchived: func(r domain.Reminder, closing domain.Timestamp, _ Classification) (domain.ArchivedReminder, error) {
			return domain.ArchivedReminder{Reminder: r, ClosingDate: closing}, nil
		},
	}
}

// recorder avoids handing the store a non-nil interface holding a nil pointer.
func recorder(m *observability.Metrics) tabular.Recorder {
	if m == nil {
		return nil
	}
	return m
}
