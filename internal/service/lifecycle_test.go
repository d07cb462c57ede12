package service

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

type fixture struct {
	tracker *Tracker
	clock   *clock.FakeClock
	storage config.StorageConfig
	events  []events.Event
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock: clock.Fake(time.Date(2025, 2, 21, 9, 0, 0, 0, time.Local)),
		storage: config.StorageConfig{
			DataDir:              t.TempDir(),
			TicketsFile:          "tickets.csv",
			ArchiveTicketsFile:   "archive_tickets.csv",
			RemindersFile:        "reminders.csv",
			ArchiveRemindersFile: "archive_reminders.csv",
		},
		metrics: observability.NewMetrics(),
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	events.SubscribeAll(dispatcher, func(_ context.Context, e events.Event) error {
		f.events = append(f.events, e)
		return nil
	})

	tracker, err := NewTracker(TrackerDependencies{
		Storage:    f.storage,
		Clock:      f.clock,
		Dispatcher: dispatcher,
		Metrics:    f.metrics,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	require.NoError(t, tracker.Init())
	f.tracker = tracker
	return f
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(f.storage.Path(name))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) snapshot(t *testing.T) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, name := range []string{f.storage.TicketsFile, f.storage.ArchiveTicketsFile, f.storage.RemindersFile, f.storage.ArchiveRemindersFile} {
		out[name] = f.read(t, name)
	}
	return out
}

func (f *fixture) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func (f *fixture) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

func TestTracker_InitCreatesHeaders(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date\n", f.read(t, "tickets.csv"))
	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date,Closing Date,Team\n", f.read(t, "archive_tickets.csv"))
	assert.Equal(t, "Reminder Name,Description,Status,Log Date\n", f.read(t, "reminders.csv"))
	assert.Equal(t, "Reminder Name,Description,Status,Log Date,Closing Date\n", f.read(t, "archive_reminders.csv"))

	before := f.snapshot(t)
	require.NoError(t, f.tracker.Init())
	assert.Equal(t, before, f.snapshot(t))
}

func TestTracker_InitRepairsHeaderPrecededByBlankLines(t *testing.T) {
	f := newFixture(t)
	path := f.storage.Path(f.storage.TicketsFile)
	require.NoError(t, os.WriteFile(path, []byte("\n\nTicket Number,Ticket Name,Status,Log Date\nA,B,Urgent,x\n"), 0o644))

	require.NoError(t, f.tracker.Init())

	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date\n", f.read(t, "tickets.csv"))
}

func TestTicket_AddThenCloseMovesToArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.tracker.AddTicket(ctx, "T1", "Fix bug", domain.StatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, domain.Timestamp("2025-02-21 09:00:00"), added.LogDate)

	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	f.clock.Advance(2*time.Hour + 30*time.Minute)
	outcome, err := f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{
		Selector:       "1",
		Status:         domain.StatusDone,
		Classification: Classification{Team: domain.TeamAsset},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Archived)

	active, err = f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := f.tracker.Tickets.ListArchive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ArchivedTicket{{
		Ticket:      domain.Ticket{Number: "T1", Name: "Fix bug", Status: domain.StatusDone, LogDate: "2025-02-21 09:00:00"},
		ClosingDate: "2025-02-21 11:30:00",
		Team:        domain.TeamAsset,
	}}, archived)
	assert.Equal(t,
		"Ticket Number,Ticket Name,Status,Log Date,Closing Date,Team\nT1,Fix bug,Done,2025-02-21 09:00:00,2025-02-21 11:30:00,Asset\n",
		f.read(t, "archive_tickets.csv"))
	assert.Equal(t, "Ticket Number,Ticket Name,Status,Log Date\n", f.read(t, "tickets.csv"))

	assert.Equal(t, []events.EventType{
		events.EventRecordAdded,
		events.EventRecordStatusChanged,
		events.EventRecordArchived,
	}, f.eventTypes())
	payload, ok := f.events[2].Payload.(events.RecordArchivedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TeamAsset, payload.Team)
	assert.Equal(t, "Fix bug", payload.Columns["Ticket Name"])
	assert.Contains(t, f.scrape(t), `tracker_records_total{kind="ticket",op="archived"} 1`)
}

func TestTicket_NonTerminalUpdateStaysActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "Fix bug", domain.StatusOnHold)
	require.NoError(t, err)
	_, err = f.tracker.AddTicket(ctx, "T2", "Patch server", domain.StatusMedium)
	require.NoError(t, err)
	archiveBefore := f.read(t, "archive_tickets.csv")

	for _, status := range []domain.Status{domain.StatusInProgress, domain.StatusUrgent, domain.StatusMedium, domain.StatusLowUrgency, domain.StatusOnHold} {
		outcome, err := f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{Selector: "2", Status: status})
		require.NoError(t, err)
		assert.Nil(t, outcome.Archived)
		assert.Equal(t, 2, outcome.Position)

		active, err := f.tracker.Tickets.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "T2", active[1].Number)
		assert.Equal(t, status, active[1].Status)
		assert.Equal(t, domain.StatusOnHold, active[0].Status)
		assert.Equal(t, archiveBefore, f.read(t, "archive_tickets.csv"))
	}
}

func TestTicket_UpdateRejectsBadInputWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "Fix bug", domain.StatusOnHold)
	require.NoError(t, err)
	before := f.snapshot(t)
	eventsBefore := len(f.events)

	tests := []struct {
		name string
		upd  StatusUpdate
		code string
	}{
		{"not a number", StatusUpdate{Selector: "abc", Status: domain.StatusDone, Classification: Classification{Team: domain.TeamEUS}}, apperrors.CodeNotANumber},
		{"empty selector", StatusUpdate{Selector: "", Status: domain.StatusUrgent}, apperrors.CodeNotANumber},
		{"zero", StatusUpdate{Selector: "0", Status: domain.StatusUrgent}, apperrors.CodeSelectionOutOfRange},
		{"past end", StatusUpdate{Selector: "2", Status: domain.StatusUrgent}, apperrors.CodeSelectionOutOfRange},
		{"negative", StatusUpdate{Selector: "-1", Status: domain.StatusUrgent}, apperrors.CodeSelectionOutOfRange},
		{"done without team", StatusUpdate{Selector: "1", Status: domain.StatusDone}, apperrors.CodeMissingClassification},
		{"done with unknown team", StatusUpdate{Selector: "1", Status: domain.StatusDone, Classification: Classification{Team: "Network"}}, apperrors.CodeMissingClassification},
		{"unknown status", StatusUpdate{Selector: "1", Status: "Closed"}, apperrors.CodeValidation},
		{"stale selection", StatusUpdate{Selector: "1", Status: domain.StatusUrgent, ExpectedID: "T9"}, apperrors.CodeStaleSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tracker.Tickets.UpdateStatus(ctx, tt.upd)

			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, before, f.snapshot(t))
		})
	}
	assert.Len(t, f.events, eventsBefore)
}

func TestTicket_ExpectedIDMatchAllowsUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "Fix bug", domain.StatusOnHold)
	require.NoError(t, err)

	outcome, err := f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{Selector: "1", Status: domain.StatusUrgent, ExpectedID: "T1"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusUrgent, outcome.Record.Status)
}

func TestTicket_ArchivingOneDuplicateKeepsTheOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "First", domain.StatusOnHold)
	require.NoError(t, err)
	_, err = f.tracker.AddTicket(ctx, "T1", "Second", domain.StatusOnHold)
	require.NoError(t, err)

	_, err = f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{Selector: "2", Status: domain.StatusDone, Classification: Classification{Team: domain.TeamEUS}})
	require.NoError(t, err)

	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "First", active[0].Name)

	archived, err := f.tracker.Tickets.ListArchive(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "Second", archived[0].Name)
	assert.Equal(t, domain.TeamEUS, archived[0].Team)
}

func TestTicket_ClosingDateNotBeforeLogDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "Same second", domain.StatusUrgent)
	require.NoError(t, err)

	outcome, err := f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{Selector: "1", Status: domain.StatusDone, Classification: Classification{Team: domain.TeamAsset}})
	require.NoError(t, err)

	logDate, err := outcome.Archived.LogDate.Time()
	require.NoError(t, err)
	closingDate, err := outcome.Archived.ClosingDate.Time()
	require.NoError(t, err)
	assert.False(t, closingDate.Before(logDate))
}

func TestTicket_RemoveDeletesEveryMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"T1", "T2", "T1"} {
		_, err := f.tracker.AddTicket(ctx, n, "name "+n, domain.StatusMedium)
		require.NoError(t, err)
	}
	archiveBefore := f.read(t, "archive_tickets.csv")

	count, err := f.tracker.Tickets.Remove(ctx, "T1")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "T2", active[0].Number)
	assert.Equal(t, archiveBefore, f.read(t, "archive_tickets.csv"))
}

func TestTicket_RemoveUnknownReportsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "Fix bug", domain.StatusOnHold)
	require.NoError(t, err)
	before := f.snapshot(t)

	count, err := f.tracker.Tickets.Remove(ctx, "T404")

	assert.Zero(t, count)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, before, f.snapshot(t))
}

func TestTicket_AddRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot(t)

	_, err := f.tracker.AddTicket(context.Background(), "T1", "x", "Closed")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, before, f.snapshot(t))
}

func TestTicket_AddWithDoneStaysActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.AddTicket(ctx, "T1", "Already done", domain.StatusDone)
	require.NoError(t, err)

	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	archived, err := f.tracker.Tickets.ListArchive(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestTicket_ArchiveWriteFailureKeepsRecordActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddTicket(ctx, "T1", "Fix bug", domain.StatusOnHold)
	require.NoError(t, err)

	archivePath := f.storage.Path(f.storage.ArchiveTicketsFile)
	require.NoError(t, os.Remove(archivePath))
	require.NoError(t, os.Mkdir(archivePath, 0o755))

	_, err = f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{Selector: "1", Status: domain.StatusDone, Classification: Classification{Team: domain.TeamAsset}})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIOFailure))
	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "T1", active[0].Number)
}

func TestTicket_CorruptRowsAreDroppedOnNextWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := f.storage.Path(f.storage.TicketsFile)
	content := "Ticket Number,Ticket Name,Status,Log Date\nT0,broken,OnHold\nT1,Fix bug,Waiting,2024-01-01 08:00:00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.Status("Waiting"), active[0].Status)

	_, err = f.tracker.AddTicket(ctx, "T2", "New", domain.StatusUrgent)
	require.NoError(t, err)

	assert.Equal(t,
		"Ticket Number,Ticket Name,Status,Log Date\nT1,Fix bug,Waiting,2024-01-01 08:00:00\nT2,New,Urgent,2025-02-21 09:00:00\n",
		f.read(t, "tickets.csv"))
	assert.Contains(t, f.scrape(t), "tracker_corrupt_rows_dropped_total")
}

func TestReminder_DoneArchivesWithoutTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddReminder(ctx, "Renew cert", "prod, staging", domain.StatusLowUrgency)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	outcome, err := f.tracker.Reminders.UpdateStatus(ctx, StatusUpdate{Selector: "1", Status: domain.StatusDone})
	require.NoError(t, err)
	require.NotNil(t, outcome.Archived)

	assert.Equal(t, "Reminder Name,Description,Status,Log Date\n", f.read(t, "reminders.csv"))
	assert.Equal(t,
		"Reminder Name,Description,Status,Log Date,Closing Date\nRenew cert,\"prod, staging\",Done,2025-02-21 09:00:00,2025-02-22 09:00:00\n",
		f.read(t, "archive_reminders.csv"))
	payload, ok := f.events[len(f.events)-1].Payload.(events.RecordArchivedPayload)
	require.True(t, ok)
	assert.Empty(t, payload.Team)
}

func TestReminder_RemoveByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.tracker.AddReminder(ctx, "Call vendor", "", domain.StatusOnHold)
	require.NoError(t, err)

	count, err := f.tracker.Reminders.Remove(ctx, "Call vendor")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.tracker.Reminders.Remove(ctx, "Call vendor")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestNewTracker_UsesDataDir(t *testing.T) {
	f := newFixture(t)

	_, err := os.Stat(filepath.Join(f.storage.DataDir, "archive_reminders.csv"))

	assert.NoError(t, err)
}

func TestTicket_ParallelAddsKeepEveryRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 40

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.tracker.AddTicket(ctx, fmt.Sprintf("T%d", i), "parallel", domain.StatusMedium)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, n)
	assert.Len(t, f.events, n)
}

func TestTicket_ParallelAddsAndClosesStayConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, err := f.tracker.AddTicket(ctx, fmt.Sprintf("OLD%d", i), "existing", domain.StatusOnHold)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.tracker.AddTicket(ctx, fmt.Sprintf("NEW%d", i), "incoming", domain.StatusUrgent)
			errs <- err
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tracker.Tickets.UpdateStatus(ctx, StatusUpdate{
				Selector:       "1",
				Status:         domain.StatusDone,
				Classification: Classification{Team: domain.TeamAsset},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active, err := f.tracker.Tickets.ListActive(ctx)
	require.NoError(t, err)
	archived, err := f.tracker.Tickets.ListArchive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 30)
	assert.Len(t, archived, 10)

	seen := map[string]bool{}
	for _, rec := range active {
		seen[rec.Number] = true
	}
	for _, rec := range archived {
		assert.False(t, seen[rec.Number], "%s is both active and archived", rec.Number)
		seen[rec.Number] = true
	}
	assert.Len(t, seen, 40)
}
