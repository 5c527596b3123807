package handlers

import (
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/gofiber/fiber/v2"
)

type CreateWindowRequest struct {
	Day       string              `json:"day" validate:"required,datetime=2006-01-02"`
	StartTime models.Clock        `json:"start_time"`
	EndTime   models.Clock        `json:"end_time" validate:"required"`
	Status    models.WindowStatus `json:"status" validate:"omitempty,oneof=available not_available"`
	Repeat    models.Repeat       `json:"repeat" validate:"omitempty,oneof=once weekly fortnightly"`
}

type UpdateWindowRequest struct {
	Day       *string              `json:"day" validate:"omitempty,datetime=2006-01-02"`
	StartTime *models.Clock        `json:"start_time"`
	EndTime   *models.Clock        `json:"end_time"`
	Status    *models.WindowStatus `json:"status" validate:"omitempty,oneof=available not_available"`
}

func (h *Handler) AddWindow(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	var req CreateWindowRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	day, err := parseDate(req.Day)
	if err != nil {
		return badRequest(c, "Invalid day format, use YYYY-MM-DD")
	}

	windows, err := h.svc.Availability.AddWindow(c.UserContext(), actor, services.WindowInput{
		Day:    day,
		Start:  req.StartTime,
		End:    req.EndTime,
		Status: req.Status,
		Repeat: req.Repeat,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(windows)
}

func (h *Handler) UpdateWindow(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "windowId")
	if !ok {
		return badRequest(c, "Invalid window ID")
	}
	var req UpdateWindowRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	edit := services.WindowEdit{Start: req.StartTime, End: req.EndTime, Status: req.Status}
	if req.Day != nil {
		day, err := parseDate(*req.Day)
		if err != nil {
			return badRequest(c, "Invalid day format, use YYYY-MM-DD")
		}
		edit.Day = &day
	}

	window, err := h.svc.Availability.EditWindow(c.UserContext(), actor, id, edit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(window)
}

func (h *Handler) DeleteWindow(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "windowId")
	if !ok {
		return badRequest(c, "Invalid window ID")
	}
	if err := h.svc.Availability.RemoveWindow(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMyWindows takes an optional from/to range, defaulting to the next
// sixteen weeks.
func (h *Handler) ListMyWindows(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	from, to, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	windows, err := h.svc.Availability.ListWindows(c.UserContext(), actor.ID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(windows)
}

func (h *Handler) Covers(c *fiber.Ctx) error {
	tutorID, ok := paramID(c, "tutorId")
	if !ok {
		return badRequest(c, "Invalid tutor ID")
	}
	day, err := parseDate(c.Query("day"))
	if err != nil {
		return badRequest(c, "Invalid day format, use YYYY-MM-DD")
	}
	start, err := models.ParseClock(c.Query("start"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	end, err := models.ParseClock(c.Query("end"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	covered, err := h.svc.Availability.Covers(c.UserContext(), tutorID, day, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"covers": covered})
}

func (h *Handler) TermOf(c *fiber.Ctx) error {
	d, err := parseDate(c.Params("date"))
	if err != nil {
		return badRequest(c, "Invalid date format, use YYYY-MM-DD")
	}
	info, err := terms.Of(d)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"term":       info.Term,
		"start_date": info.Start.Format("2006-01-02"),
		"end_date":   info.End.Format("2006-01-02"),
	})
}
