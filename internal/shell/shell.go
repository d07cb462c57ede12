// Package shell runs the interactive numbered menu over the tracker.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

const mainMenu = `
Main Menu:

1. Add Ticket
2. Update Ticket Status
3. View All Available Tickets
4. Remove Ticket
5. Add Reminder
6. Update Reminder Status
7. View All Reminders
8. Remove Reminder
9. Schedule Reminder Notification
10. Exit
`

// Dependencies bundles the shell's collaborators.
type Dependencies struct {
	Tracker *service.Tracker
	// Scheduler is optional; without it option 9 reports that scheduling is unavailable.
	Scheduler *scheduler.Scheduler
	In        io.Reader
	Out       io.Writer
	Logger    *zap.Logger
}

// Shell prompts for input and dispatches menu actions to the tracker.
type Shell struct {
	tracker   *service.Tracker
	scheduler *scheduler.Scheduler
	in        *bufio.Scanner
	logger    *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// New constructs a Shell.
func New(deps Dependencies) *Shell {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Shell{
		tracker:   deps.Tracker,
		scheduler: deps.Scheduler,
		in:        bufio.NewScanner(deps.In),
		logger:    deps.Logger,
		out:       deps.Out,
	}
}

// Notifier prints fired reminders to the shell's output.
func (s *Shell) Notifier() scheduler.Notifier {
	return scheduler.NotifierFunc(func(n scheduler.Notification) {
		s.printf("\nReminder: %s\n", n.Message)
	})
}

// Run loops over the main menu until Exit is chosen, input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printf("%s", mainMenu)
		choice, err := s.ask("\nEnter your choice: ")
		if err != nil {
			return ignoreEOF(err)
		}

		switch choice {
		case "1":
			err = s.addTicket(ctx)
		case "2":
			err = s.updateTicket(ctx)
		case "3":
			err = s.viewTickets(ctx)
		case "4":
			err = s.removeTicket(ctx)
		case "5":
			err = s.addReminder(ctx)
		case "6":
			err = s.updateReminder(ctx)
		case "7":
			err = s.viewReminders(ctx)
		case "8":
			err = s.removeReminder(ctx)
		case "9":
			err = s.scheduleNotification()
		case "10":
			s.printf("Exiting...\n")
			return nil
		default:
			s.printf("Invalid choice. Please try again.\n")
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			s.report(err)
		}
	}
}

func (s *Shell) addTicket(ctx context.Context) error {
	number, err := s.ask("\nEnter a ticket number if available: ")
	if err != nil {
		return err
	}
	name, err := s.ask("Enter a ticket name: ")
	if err != nil {
		return err
	}
	status, err := s.askStatus()
	if err != nil {
		return err
	}
	ticket, err := s.tracker.AddTicket(ctx, number, name, status)
	if err != nil {
		return err
	}
	s.printf("Ticket %s added on %s.\n", ticket.Number, ticket.LogDate)
	return nil
}

func (s *Shell) updateTicket(ctx context.Context) error {
	tickets, err := s.tracker.Tickets.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		s.printf("\nNo tickets available.\n")
		return nil
	}
	s.printTickets(tickets)
	position, err := s.askPosition(len(tickets))
	if err != nil {
		return err
	}
	selected := tickets[position-1]
	s.printf("Current Status: %s\n", selected.Status)

	upd := service.StatusUpdate{Selector: strconv.Itoa(position), ExpectedID: selected.Number}
	if upd.Status, err = s.askStatus(); err != nil {
		return err
	}
	if upd.Status.IsTerminal() {
		if upd.Team, err = s.askTeam(); err != nil {
			return err
		}
	}
	outcome, err := s.tracker.Tickets.UpdateStatus(ctx, upd)
	if err != nil {
		return err
	}
	if outcome.Archived != nil {
		s.printf("Ticket %s closed by %s and archived.\n", outcome.Archived.Number, outcome.Archived.Team)
		return nil
	}
	s.printf("Ticket %s is now %s.\n", outcome.Record.Number, outcome.Record.Status)
	return nil
}

func (s *Shell) viewTickets(ctx context.Context) error {
	tickets, err := s.tracker.Tickets.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		s.printf("\nNo tickets available.\n")
		return nil
	}
	s.printTickets(tickets)
	return nil
}

func (s *Shell) removeTicket(ctx context.Context) error {
	number, err := s.ask("\nEnter the ticket number to remove: ")
	if err != nil {
		return err
	}
	removed, err := s.tracker.Tickets.Remove(ctx, number)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		s.printf("\nTicket number not found.\n")
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("Removed %d ticket(s) numbered %s.\n", removed, number)
	return nil
}

func (s *Shell) addReminder(ctx context.Context) error {
	name, err := s.ask("\nEnter a reminder name: ")
	if err != nil {
		return err
	}
	description, err := s.ask("Enter a description: ")
	if err != nil {
		return err
	}
	status, err := s.askStatus()
	if err != nil {
		return err
	}
	reminder, err := s.tracker.AddReminder(ctx, name, description, status)
	if err != nil {
		return err
	}
	s.printf("Reminder %s added on %s.\n", reminder.Name, reminder.LogDate)
	return nil
}

func (s *Shell) updateReminder(ctx context.Context) error {
	reminders, err := s.tracker.Reminders.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(reminders) == 0 {
		s.printf("\nNo reminders available.\n")
		return nil
	}
	s.printReminders(reminders)
	position, err := s.askPosition(len(reminders))
	if err != nil {
		return err
	}
	selected := reminders[position-1]
	s.printf("Current Status: %s\n", selected.Status)

	status, err := s.askStatus()
	if err != nil {
		return err
	}
	outcome, err := s.tracker.Reminders.UpdateStatus(ctx, service.StatusUpdate{
		Selector:   strconv.Itoa(position),
		Status:     status,
		ExpectedID: selected.Name,
	})
	if err != nil {
		return err
	}
	if outcome.Archived != nil {
		s.printf("Reminder %s done and archived.\n", outcome.Archived.Name)
		return nil
	}
	s.printf("Reminder %s is now %s.\n", outcome.Record.Name, outcome.Record.Status)
	return nil
}

func (s *Shell) viewReminders(ctx context.Context) error {
	reminders, err := s.tracker.Reminders.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(reminders) == 0 {
		s.printf("\nNo reminders available.\n")
		return nil
	}
	s.printReminders(reminders)
	return nil
}

func (s *Shell) removeReminder(ctx context.Context) error {
	name, err := s.ask("\nEnter the reminder name to remove: ")
	if err != nil {
		return err
	}
	removed, err := s.tracker.Reminders.Remove(ctx, name)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		s.printf("\nReminder not found.\n")
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("Removed %d reminder(s) named %s.\n", removed, name)
	return nil
}

func (s *Shell) scheduleNotification() error {
	if s.scheduler == nil {
		s.printf("\nReminder scheduling is not available.\n")
		return nil
	}
	date, err := s.ask("\nEnter the reminder date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	message, err := s.ask("Enter the reminder message: ")
	if err != nil {
		return err
	}
	job, err := s.scheduler.ScheduleOneShot(date, message)
	if err != nil {
		return err
	}
	s.printf("Reminder scheduled for %s.\n", domain.NewTimestamp(job.FireAt))
	return nil
}

func (s *Shell) printTickets(tickets []domain.Ticket) {
	s.printf("\n")
	for i, t := range tickets {
		s.printf("%d. Ticket Number: %s, Name: %s, Status: %s, Logged: %s\n", i+1, t.Number, t.Name, t.Status, t.LogDate)
	}
}

func (s *Shell) printReminders(reminders []domain.Reminder) {
	s.printf("\n")
	for i, r := range reminders {
		s.printf("%d. Reminder: %s, Description: %s, Status: %s, Logged: %s\n", i+1, r.Name, r.Description, r.Status, r.LogDate)
	}
}

// askPosition re-prompts until a number in 1..size is entered.
func (s *Shell) askPosition(size int) (int, error) {
	for {
		answer, err := s.ask("\nSelect a number from the list: ")
		if err != nil {
			return 0, err
		}
		position, convErr := strconv.Atoi(answer)
		switch {
		case convErr != nil:
			s.report(apperrors.NewNotANumber(answer))
		case position < 1 || position > size:
			s.report(apperrors.NewSelectionOutOfRange(position, size))
		default:
			return position, nil
		}
	}
}

func (s *Shell) askStatus() (domain.Status, error) {
	s.printf("\n")
	for i, status := range domain.Statuses {
		s.printf("%d. %s\n", i+1, status)
	}
	for {
		answer, err := s.ask("Select status: ")
		if err != nil {
			return "", err
		}
		if status, ok := domain.ParseStatus(answer); ok {
			return status, nil
		}
		s.printf("Invalid status. Please try again.\n")
	}
}

func (s *Shell) askTeam() (domain.Team, error) {
	s.printf("\n")
	for i, team := range domain.Teams {
		s.printf("%d. %s\n", i+1, team)
	}
	for {
		answer, err := s.ask("Select the team that closed it: ")
		if err != nil {
			return "", err
		}
		if team, ok := domain.ParseTeam(answer); ok {
			return team, nil
		}
		s.printf("Invalid team. Please try again.\n")
	}
}

// ask prints prompt and reads one trimmed line. It returns io.EOF when input ends.
func (s *Shell) ask(prompt string) (string, error) {
	s.printf("%s", prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) report(err error) {
	derr := apperrors.ToDomainError(err)
	if derr.HTTPStatus >= 500 {
		s.logger.Error("menu action failed", zap.Error(err))
		s.printf("Error: %v\n", err)
		return
	}
	s.printf("%s\n", derr.Message)
}

func (s *Shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
