package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(api fiber.Router, h *handlers.Handler, jwtSecret string) {
	tutor := api.Group("/tutor", middleware.Protected(jwtSecret), middleware.TutorRequired())

	availability := tutor.Group("/availability")
	availability.Get("", h.ListMyWindows)
	availability.Post("", h.AddWindow)
	availability.Put("/:windowId", h.UpdateWindow)
	availability.Delete("/:windowId", h.DeleteWindow)

	languages := tutor.Group("/languages")
	languages.Get("", h.ListTutorLanguages)
	languages.Post("/:languageId", h.AddTutorLanguage)
	languages.Delete("/:languageId", h.RemoveTutorLanguage)

	api.Get("/availability/:tutorId/covers", middleware.Protected(jwtSecret), h.Covers)
}
