package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
)

func SchedulingRoutes(api fiber.Router, h *handlers.Handler, jwtSecret string) {
	protected := middleware.Protected(jwtSecret)

	requests := api.Group("/requests", protected)
	requests.Post("", middleware.StudentRequired(), h.SubmitRequest)
	requests.Get("", h.ListRequests)

	api.Get("/lessons", protected, h.ListLessons)
	api.Get("/calendar/:year/:month", protected, h.Calendar)
}
