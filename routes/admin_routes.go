package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, h *handlers.Handler, jwtSecret string) {
	admin := api.Group("/admin", middleware.Protected(jwtSecret), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", h.GetAllUsers)
	users.Post("", h.AdminCreateUser)
	users.Delete("/:userId", h.AdminDeleteUser)

	languages := admin.Group("/languages")
	languages.Post("", h.CreateLanguage)
	languages.Delete("/:languageId", h.DeleteLanguage)

	requests := admin.Group("/requests")
	requests.Post("/:requestId/allocate", h.AllocateRequest)
	requests.Post("/:requestId/deny", h.DenyRequest)

	admin.Put("/lessons/:lessonId", h.UpdateLesson)

	students := admin.Group("/students")
	students.Put("/:studentId/price", h.SetPrice)
	students.Post("/:studentId/invoices", h.CreateInvoice)

	admin.Post("/invoices/:invoiceId/approve", h.ApproveInvoice)
}
