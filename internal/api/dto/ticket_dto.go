package dto

import "github.com/spec-kit/ticket-tracker/internal/domain"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// TicketResponse is an active ticket with its 1-based list position.
type TicketResponse struct {
	Position int              `json:"position"`
	Number   string           `json:"number"`
	Name     string           `json:"name"`
	Status   domain.Status    `json:"status"`
	LogDate  domain.Timestamp `json:"log_date"`
}

// ArchivedTicketResponse is a closed ticket.
type ArchivedTicketResponse struct {
	Number      string           `json:"number"`
	Name        string           `json:"name"`
	Status      domain.Status    `json:"status"`
	LogDate     domain.Timestamp `json:"log_date"`
	ClosingDate domain.Timestamp `json:"closing_date"`
	Team        domain.Team      `json:"team"`
}

// NewTicketResponse maps a ticket at position.
func NewTicketResponse(position int, t domain.Ticket) TicketResponse {
	return TicketResponse{Position: position, Number: t.Number, Name: t.Name, Status: t.Status, LogDate: t.LogDate}
}

// NewArchivedTicketResponse maps an archived ticket.
func NewArchivedTicketResponse(t domain.ArchivedTicket) ArchivedTicketResponse {
	return ArchivedTicketResponse{
		Number:      t.Number,
		Name:        t.Name,
		Status:      t.Status,
		LogDate:     t.LogDate,
		ClosingDate: t.ClosingDate,
		Team:        t.Team,
	}
}
