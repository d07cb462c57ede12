package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type fixture struct {
	dir     string
	clock   *clock.FakeClock
	tracker *service.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	fake := clock.Fake(time.Date(2025, 2, 21, 9, 0, 0, 0, time.Local))
	tracker, err := service.NewTracker(service.TrackerDependencies{
		Storage: config.StorageConfig{
			DataDir:              dir,
			TicketsFile:          "tickets.csv",
			ArchiveTicketsFile:   "archive_tickets.csv",
			RemindersFile:        "reminders.csv",
			ArchiveRemindersFile: "archive_reminders.csv",
		},
		Clock: fake,
	})
	require.NoError(t, err)
	require.NoError(t, tracker.Init())
	return &fixture{dir: dir, clock: fake, tracker: tracker}
}

func (f *fixture) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(Dependencies{
		Tracker: f.tracker,
		In:      strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Out:     &out,
	})
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return string(raw)
}

func TestShell_AddAndViewTicket(t *testing.T) {
	f := newFixture(t)

	out := f.run(t,
		"1", "T1", "Printer jam", "3",
		"3",
		"10",
	)

	assert.Contains(t, out, "Ticket T1 added on 2025-02-21 09:00:00.")
	assert.Contains(t, out, "1. Ticket Number: T1, Name: Printer jam, Status: Urgent, Logged: 2025-02-21 09:00:00")
	assert.Contains(t, out, "Exiting...")
	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date\nT1,Printer jam,Urgent,2025-02-21 09:00:00\n", f.read(t, "tickets.csv"))
}

func TestShell_InvalidChoiceIsReoffered(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, "x", "11", "10")

	assert.Equal(t, 2, strings.Count(out, "Invalid choice. Please try again."))
	assert.Equal(t, 3, strings.Count(out, "Main Menu:"))
}

func TestShell_UpdateTicketReprompts(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.AddTicket(context.Background(), "T1", "Printer", "Urgent")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	out := f.run(t,
		"2",
		"abc", "5", "1",
		"Closed", "6",
		"Network", "2",
		"10",
	)

	assert.Contains(t, out, `selection "abc" is not a number`)
	assert.Contains(t, out, "selection 5 is out of range 1..1")
	assert.Contains(t, out, "Current Status: Urgent")
	assert.Contains(t, out, "Invalid status. Please try again.")
	assert.Contains(t, out, "Invalid team. Please try again.")
	assert.Contains(t, out, "Ticket T1 closed by EUS and archived.")
	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date\n", f.read(t, "tickets.csv"))
	assert.Equal(t,
		"Ticket Number,Ticket Name,Status,Log Date,Closing Date,Team\nT1,Printer,Done,2025-02-21 09:00:00,2025-02-21 10:00:00,EUS\n",
		f.read(t, "archive_tickets.csv"))
}

func TestShell_EmptyListsAndMissingRemoval(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, "2", "3", "4", "T404", "6", "7", "8", "nothing", "10")

	assert.Equal(t, 2, strings.Count(out, "No tickets available."))
	assert.Equal(t, 2, strings.Count(out, "No reminders available."))
	assert.Contains(t, out, "Ticket number not found.")
	assert.Contains(t, out, "Reminder not found.")
}

func TestShell_ReminderLifecycle(t *testing.T) {
	f := newFixture(t)

	out := f.run(t,
		"5", "renew certs", "prod, staging", "Medium",
		"5", "dentist", "", "OnHold",
		"6", "2", "done",
		"8", "renew certs",
		"7",
		"10",
	)

	assert.Contains(t, out, "Reminder dentist done and archived.")
	assert.Contains(t, out, "Removed 1 reminder(s) named renew certs.")
	assert.Contains(t, out, "No reminders available.")
	assert.Equal(t, "Reminder,Description,Status,Log Date\n", f.read(t, "reminders.csv"))
	assert.Contains(t, f.read(t, "archive_reminders.csv"), "dentist,,Done,2025-02-21 09:00:00,2025-02-21 09:00:00\n")
}

func TestShell_ScheduleNotification(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	sh := New(Dependencies{
		Tracker: f.tracker,
		In:      strings.NewReader("9\n2025-02-20\nlate\n9\n2025-02-22\ncall the vendor\n10\n"),
		Out:     &out,
	})
	sh.scheduler = scheduler.New(scheduler.Dependencies{Clock: f.clock, Notifier: sh.Notifier(), FireHour: 10})

	require.NoError(t, sh.Run(context.Background()))
	f.clock.Advance(48 * time.Hour)

	assert.Contains(t, out.String(), "the scheduled time is already past")
	assert.Contains(t, out.String(), "Reminder scheduled for 2025-02-22 10:00:00.")
	assert.Contains(t, out.String(), "Reminder: call the vendor")
}

func TestShell_ScheduleWithoutScheduler(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, "9", "10")

	assert.Contains(t, out, "Reminder scheduling is not available.")
}

func TestShell_EndOfInputStops(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, "1", "T1")

	assert.Contains(t, out, "Enter a ticket name: ")
	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date\n", f.read(t, "tickets.csv"))
}

func TestShell_IOFailureReturnsToMenu(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "tickets.csv")))
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "tickets.csv"), 0o755))

	out := f.run(t, "3", "10")

	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "Exiting...")
}
