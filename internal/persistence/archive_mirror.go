package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/events"
)

const insertArchiveRecord = `INSERT INTO archive_records
    (event_id, kind, record_id, team, log_date, closing_date, columns, archived_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
ON CONFLICT (event_id) DO NOTHING`

// ArchiveMirror copies every archived record into Postgres. The CSV archive
// stays authoritative; mirror failures are reported to the dispatcher only.
type ArchiveMirror struct {
	db     Execer
	logger *zap.Logger
}

// NewArchiveMirror returns a mirror writing through db. A nil db yields a no-op mirror.
func NewArchiveMirror(db Execer, logger *zap.Logger) *ArchiveMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveMirror{db: db, logger: logger}
}

// Register subscribes the mirror to archive events.
func (m *ArchiveMirror) Register(dispatcher events.Dispatcher) {
	if m.db == nil || dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventRecordArchived, m.Handle)
}

// Handle inserts the archived row carried by event.
func (m *ArchiveMirror) Handle(ctx context.Context, event events.Event) error {
	if m.db == nil {
		return nil
	}
	payload, ok := event.Payload.(events.RecordArchivedPayload)
	if !ok {
		return fmt.Errorf("archive mirror: unexpected payload %T", event.Payload)
	}
	columns, err := json.Marshal(payload.Columns)
	if err != nil {
		return fmt.Errorf("archive mirror: encode columns: %w", err)
	}

	_, err = m.db.Exec(ctx, insertArchiveRecord,
		event.ID,
		string(event.Kind),
		event.RecordID,
		string(payload.Team),
		payload.LogDate.String(),
		payload.ClosingDate.String(),
		columns,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("archive mirror: insert: %w", err)
	}
	m.logger.Debug("archived record mirrored", zap.String("kind", string(event.Kind)), zap.String("record_id", event.RecordID))
	return nil
}
