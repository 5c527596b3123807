package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every route group under /api/v1.
func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	api := app.Group("/api/v1")

	PublicRoutes(api, h)
	AuthRoutes(api, h, jwtSecret)
	AdminRoutes(api, h, jwtSecret)
	TutorRoutes(api, h, jwtSecret)
	SchedulingRoutes(api, h, jwtSecret)
	InvoiceRoutes(api, h, jwtSecret)
	MessagingRoutes(api, h, jwtSecret)
}
