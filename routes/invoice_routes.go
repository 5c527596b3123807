package routes

import (
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
)

func InvoiceRoutes(api fiber.Router, h *handlers.Handler, jwtSecret string) {
	protected := middleware.Protected(jwtSecret)

	invoices := api.Group("/invoices", protected)
	invoices.Get("", h.ListInvoices)
	invoices.Get("/:invoiceId", h.GetInvoice)
	invoices.Post("/:invoiceId/pay", middleware.StudentRequired(), h.PayInvoice)
	invoices.Post("/:invoiceId/document", h.RenderInvoiceDocument)

	api.Get("/students/:studentId/paid", protected, h.StudentPaid)
}
