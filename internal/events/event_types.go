package events

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRecordAdded         EventType = "record_added"
	EventRecordStatusChanged EventType = "record_status_changed"
	EventRecordArchived      EventType = "record_archived"
	EventRecordRemoved       EventType = "record_removed"
)

// Event represents a lifecycle event emitted after the engine persisted a change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Kind      domain.Kind `json:"kind"`
	RecordID  string      `json:"record_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RecordAddedPayload payload.
type RecordAddedPayload struct {
	Status  domain.Status    `json:"status"`
	LogDate domain.Timestamp `json:"log_date"`
}

// RecordStatusChangedPayload payload.
type RecordStatusChangedPayload struct {
	Position  int           `json:"position"`
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// RecordArchivedPayload carries the archived row keyed by its header.
type RecordArchivedPayload struct {
	Columns     map[string]string `json:"columns"`
	LogDate     domain.Timestamp  `json:"log_date"`
	ClosingDate domain.Timestamp  `json:"closing_date"`
	Team        domain.Team       `json:"team,omitempty"`
}

// RecordRemovedPayload payload.
type RecordRemovedPayload struct {
	Count int `json:"count"`
}
