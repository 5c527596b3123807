package handlers

import (
	"strconv"
	"time"

	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LessonRequestBody struct {
	LanguageID    uuid.UUID        `json:"language_id" validate:"required"`
	Description   string           `json:"description" validate:"max=2000"`
	PreferredTime models.Clock     `json:"preferred_time"`
	Venue         string           `json:"venue" validate:"max=255"`
	Duration      int              `json:"duration" validate:"required,gt=0"`
	Frequency     models.Frequency `json:"frequency" validate:"required"`
	Term          models.TermName  `json:"term" validate:"required"`
}

type AllocateRequest struct {
	TutorID   uuid.UUID        `json:"tutor_id" validate:"required"`
	FirstDate string           `json:"first_date" validate:"required,datetime=2006-01-02"`
	FirstTime models.Clock     `json:"first_time"`
	Price     *decimal.Decimal `json:"price"`
}

type DenyRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdateLessonRequest struct {
	Cancel  bool          `json:"cancel"`
	NewDate *string       `json:"new_date" validate:"omitempty,datetime=2006-01-02"`
	NewTime *models.Clock `json:"new_time"`
}

func (h *Handler) SubmitRequest(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	var req LessonRequestBody
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.svc.Scheduler.SubmitRequest(c.UserContext(), actor, services.RequestInput{
		LanguageID:    req.LanguageID,
		Description:   req.Description,
		PreferredTime: req.PreferredTime,
		Venue:         req.Venue,
		Duration:      req.Duration,
		Frequency:     req.Frequency,
		Term:          req.Term,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) ListRequests(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	requests, err := h.svc.Scheduler.ListRequests(c.UserContext(), actor, models.RequestStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

func (h *Handler) AllocateRequest(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	requestID, ok := paramID(c, "requestId")
	if !ok {
		return badRequest(c, "Invalid request ID")
	}
	var req AllocateRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	first, err := parseDate(req.FirstDate)
	if err != nil {
		return badRequest(c, "Invalid first_date format, use YYYY-MM-DD")
	}
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}

	lesson, err := h.svc.Scheduler.Allocate(c.UserContext(), actor, services.AllocationInput{
		RequestID: requestID,
		TutorID:   req.TutorID,
		FirstDate: first,
		FirstTime: req.FirstTime,
		Price:     price,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *Handler) DenyRequest(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	requestID, ok := paramID(c, "requestId")
	if !ok {
		return badRequest(c, "Invalid request ID")
	}
	var req DenyRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	denied, err := h.svc.Scheduler.Deny(c.UserContext(), actor, requestID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(denied)
}

func (h *Handler) ListLessons(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	var filter services.LessonFilter
	if q := c.Query("student_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return badRequest(c, "Invalid student_id")
		}
		filter.StudentID = &id
	}
	if q := c.Query("tutor_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return badRequest(c, "Invalid tutor_id")
		}
		filter.TutorID = &id
	}
	lessons, err := h.svc.Scheduler.ListLessons(c.UserContext(), actor, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lessons)
}

func (h *Handler) UpdateLesson(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	lessonID, ok := paramID(c, "lessonId")
	if !ok {
		return badRequest(c, "Invalid lesson ID")
	}
	var req UpdateLessonRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if !req.Cancel && req.NewDate == nil && req.NewTime == nil {
		return badRequest(c, "Either cancel or a new date/time is required")
	}

	upd := services.LessonUpdate{Cancel: req.Cancel, NewTime: req.NewTime}
	if req.NewDate != nil {
		d, err := parseDate(*req.NewDate)
		if err != nil {
			return badRequest(c, "Invalid new_date format, use YYYY-MM-DD")
		}
		upd.NewDate = &d
	}

	lesson, err := h.svc.Scheduler.UpdateLesson(c.UserContext(), actor, lessonID, upd)
	if err != nil {
		return respondError(c, err)
	}
	if lesson == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(lesson)
}

func (h *Handler) Calendar(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return badRequest(c, "Invalid year")
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil || month < 1 || month > 12 {
		return badRequest(c, "Invalid month")
	}
	occurrences, err := h.svc.Scheduler.Calendar(c.UserContext(), actor, year, time.Month(month))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(occurrences)
}
