package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(api fiber.Router, h *handlers.Handler, jwtSecret string) {
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.Protected(jwtSecret), h.Me)
}
