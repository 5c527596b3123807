package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(api fiber.Router, h *handlers.Handler, jwtSecret string) {
	messages := api.Group("/messages", middleware.Protected(jwtSecret))
	messages.Post("", h.SendMessage)
	messages.Get("", h.GetMessages)
	messages.Get("/:messageId/thread", h.GetThread)
	messages.Put("/:messageId/read", h.MarkMessageRead)
}
