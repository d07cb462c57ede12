package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tracker *service.Tracker
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tracker *service.Tracker) *TicketsHandler {
	return &TicketsHandler{tracker: tracker}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tracker.Tickets.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i, t := range tickets {
		items = append(items, dto.NewTicketResponse(i+1, t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Number) == "" || strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("number and name required", nil)
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return err
	}

	ticket, err := h.tracker.AddTicket(c.UserContext(), req.Number, req.Name, status)
	if err != nil {
		return err
	}
	tickets, err := h.tracker.Tickets.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(len(tickets), ticket)})
}

// UpdateStatus PATCH /tickets/:position/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	upd, err := parseStatusUpdate(c)
	if err != nil {
		return err
	}
	outcome, err := h.tracker.Tickets.UpdateStatus(c.UserContext(), upd)
	if err != nil {
		return err
	}
	resp := dto.UpdateStatusResponse{Position: outcome.Position}
	if outcome.Archived != nil {
		resp.Archived = true
		resp.Record = dto.NewArchivedTicketResponse(*outcome.Archived)
	} else {
		resp.Record = dto.NewTicketResponse(outcome.Position, outcome.Record)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// RemoveTicket DELETE /tickets/:id removes every active ticket with that number.
func (h *TicketsHandler) RemoveTicket(c *fiber.Ctx) error {
	removed, err := h.tracker.Tickets.Remove(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RemoveResponse{Removed: removed}})
}

// ListArchive GET /tickets/archive.
func (h *TicketsHandler) ListArchive(c *fiber.Ctx) error {
	archived, err := h.tracker.Tickets.ListArchive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ArchivedTicketResponse, 0, len(archived))
	for _, t := range archived {
		items = append(items, dto.NewArchivedTicketResponse(t))
	}
	return c.JSON(fiber.Map{"data": items})
}
