package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateReminderRequest payload.
type CreateReminderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ReminderResponse is an active reminder with its 1-based list position.
type ReminderResponse struct {
	Position    int              `json:"position"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      domain.Status    `json:"status"`
	LogDate     domain.Timestamp `json:"log_date"`
}

// ArchivedReminderResponse is a closed reminder.
type ArchivedReminderResponse struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      domain.Status    `json:"status"`
	LogDate     domain.Timestamp `json:"log_date"`
	ClosingDate domain.Timestamp `json:"closing_date"`
}

// ScheduleReminderRequest asks for a one-shot notification on Date (YYYY-MM-DD).
type ScheduleReminderRequest struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// ScheduledJobResponse describes a pending notification.
type ScheduledJobResponse struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	FireAt  time.Time `json:"fire_at"`
}

// NewReminderResponse maps a reminder at position.
func NewReminderResponse(position int, r domain.Reminder) ReminderResponse {
	return ReminderResponse{Position: position, Name: r.Name, Description: r.Description, Status: r.Status, LogDate: r.LogDate}
}

// NewArchivedReminderResponse maps an archived reminder.
func NewArchivedReminderResponse(r domain.ArchivedReminder) ArchivedReminderResponse {
	return ArchivedReminderResponse{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		LogDate:     r.LogDate,
		ClosingDate: r.ClosingDate,
	}
}
