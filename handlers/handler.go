package handlers

import (
	"errors"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_scheduler/configs"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Handler serves the HTTP API on top of the services.
type Handler struct {
	svc      *services.Services
	cfg      config.Config
	validate *validator.Validate
}

func New(svc *services.Services, cfg config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg, validate: utils.NewValidator()}
}

var statusByKind = map[utils.Kind]int{
	utils.KindNotFound:         fiber.StatusNotFound,
	utils.KindNotAuthorized:    fiber.StatusForbidden,
	utils.KindNotOwned:         fiber.StatusForbidden,
	utils.KindOverlap:          fiber.StatusConflict,
	utils.KindTutorConflict:    fiber.StatusConflict,
	utils.KindStudentConflict:  fiber.StatusConflict,
	utils.KindAlreadyAllocated: fiber.StatusConflict,
	utils.KindRequestDenied:    fiber.StatusConflict,
	utils.KindDuplicate:        fiber.StatusConflict,
	utils.KindInUse:            fiber.StatusConflict,
	utils.KindInvoiceSettled:   fiber.StatusConflict,
	utils.KindNotPaid:          fiber.StatusConflict,
}

func respondError(c *fiber.Ctx, err error) error {
	var de *utils.Error
	if !errors.As(err, &de) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("🔥 request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	status, ok := statusByKind[de.Kind]
	if !ok {
		status = fiber.StatusUnprocessableEntity
	}
	body := fiber.Map{"error": de.Error(), "kind": de.Kind}
	if de.Field != "" {
		body["field"] = de.Field
	}
	if de.Date != nil {
		body["date"] = de.Date.Format(utils.DateLayout)
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

var errCannotParse = errors.New("Cannot parse JSON")

// parseBody decodes and validates a JSON body into req.
func (h *Handler) parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errCannotParse
	}
	return h.validate.Struct(req)
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(utils.DateLayout, strings.TrimSpace(s))
}

const defaultWindowRange = 16 * 7 * 24 * time.Hour

func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	if q := c.Query("from"); q != "" {
		d, err := parseDate(q)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid from date, use YYYY-MM-DD")
		}
		from = d
	}
	to := from.Add(defaultWindowRange)
	if q := c.Query("to"); q != "" {
		d, err := parseDate(q)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid to date, use YYYY-MM-DD")
		}
		to = d
	}
	return from, to, nil
}
