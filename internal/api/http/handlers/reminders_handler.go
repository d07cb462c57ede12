package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// RemindersHandler manages reminder endpoints and one-shot notifications.
type RemindersHandler struct {
	tracker   *service.Tracker
	scheduler *scheduler.Scheduler
}

// NewRemindersHandler constructs handler. A nil scheduler disables /reminders/schedule.
func NewRemindersHandler(tracker *service.Tracker, sched *scheduler.Scheduler) *RemindersHandler {
	return &RemindersHandler{tracker: tracker, scheduler: sched}
}

// ListReminders GET /reminders.
func (h *RemindersHandler) ListReminders(c *fiber.Ctx) error {
	reminders, err := h.tracker.Reminders.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ReminderResponse, 0, len(reminders))
	for i, r := range reminders {
		items = append(items, dto.NewReminderResponse(i+1, r))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateReminder POST /reminders.
func (h *RemindersHandler) CreateReminder(c *fiber.Ctx) error {
	var req dto.CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return err
	}

	reminder, err := h.tracker.AddReminder(c.UserContext(), req.Name, req.Description, status)
	if err != nil {
		return err
	}
	reminders, err := h.tracker.Reminders.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewReminderResponse(len(reminders), reminder)})
}

// UpdateStatus PATCH /reminders/:position/status.
func (h *RemindersHandler) UpdateStatus(c *fiber.Ctx) error {
	upd, err := parseStatusUpdate(c)
	if err != nil {
		return err
	}
	outcome, err := h.tracker.Reminders.UpdateStatus(c.UserContext(), upd)
	if err != nil {
		return err
	}
	resp := dto.UpdateStatusResponse{Position: outcome.Position}
	if outcome.Archived != nil {
		resp.Archived = true
		resp.Record = dto.NewArchivedReminderResponse(*outcome.Archived)
	} else {
		resp.Record = dto.NewReminderResponse(outcome.Position, outcome.Record)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// RemoveReminder DELETE /reminders/:id removes every active reminder with that name.
func (h *RemindersHandler) RemoveReminder(c *fiber.Ctx) error {
	removed, err := h.tracker.Reminders.Remove(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RemoveResponse{Removed: removed}})
}

// ListArchive GET /reminders/archive.
func (h *RemindersHandler) ListArchive(c *fiber.Ctx) error {
	archived, err := h.tracker.Reminders.ListArchive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ArchivedReminderResponse, 0, len(archived))
	for _, r := range archived {
		items = append(items, dto.NewArchivedReminderResponse(r))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Schedule POST /reminders/schedule.
func (h *RemindersHandler) Schedule(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.ErrNotFound
	}
	var req dto.ScheduleReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	job, err := h.scheduler.ScheduleOneShot(req.Date, req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": scheduledJob(job)})
}

// ListScheduled GET /reminders/schedule.
func (h *RemindersHandler) ListScheduled(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.ErrNotFound
	}
	pending := h.scheduler.Pending()
	items := make([]dto.ScheduledJobResponse, 0, len(pending))
	for _, job := range pending {
		items = append(items, scheduledJob(job))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CancelScheduled DELETE /reminders/schedule/:job.
func (h *RemindersHandler) CancelScheduled(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.ErrNotFound
	}
	for _, job := range h.scheduler.Pending() {
		if job.ID == c.Params("job") {
			job.Cancel()
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return apperrors.NewNotFound("scheduled reminder", map[string]any{"id": c.Params("job")})
}

func scheduledJob(job *scheduler.Job) dto.ScheduledJobResponse {
	return dto.ScheduledJobResponse{ID: job.ID, Message: job.Message, FireAt: job.FireAt}
}
