package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(api fiber.Router, h *handlers.Handler) {
	api.Get("/terms/:date", h.TermOf)
	api.Get("/languages", h.ListLanguages)
}
