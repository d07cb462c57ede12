package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

func parseStatus(raw string) (domain.Status, error) {
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
	}
	return status, nil
}

// parseStatusUpdate reads the position from the path and the rest from the body.
// The team stays raw so the engine decides whether it is required and valid.
func parseStatusUpdate(c *fiber.Ctx) (service.StatusUpdate, error) {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return service.StatusUpdate{}, apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return service.StatusUpdate{}, err
	}
	upd := service.StatusUpdate{
		Selector:   c.Params("position"),
		Status:     status,
		ExpectedID: req.ExpectedID,
	}
	if req.Team != "" {
		if team, ok := domain.ParseTeam(req.Team); ok {
			upd.Team = team
		} else {
			upd.Team = domain.Team(req.Team)
		}
	}
	return upd, nil
}
