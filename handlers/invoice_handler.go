package handlers

import (
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SetPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) SetPrice(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return badRequest(c, "Invalid student ID")
	}
	var req SetPriceRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	updated, err := h.svc.Invoices.SetPrice(c.UserContext(), actor, studentID, req.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"lessons_updated": updated})
}

// CreateInvoice answers 204 when the student has nothing left to bill.
func (h *Handler) CreateInvoice(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return badRequest(c, "Invalid student ID")
	}
	invoice, err := h.svc.Invoices.CreateInvoice(c.UserContext(), actor, studentID)
	if err != nil {
		return respondError(c, err)
	}
	if invoice == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func (h *Handler) ListInvoices(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	invoices, err := h.svc.Invoices.ListInvoices(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoices)
}

func (h *Handler) GetInvoice(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "invoiceId")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}
	invoice, err := h.svc.Invoices.GetInvoice(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

func (h *Handler) PayInvoice(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "invoiceId")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}
	invoice, err := h.svc.Invoices.Pay(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

func (h *Handler) ApproveInvoice(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "invoiceId")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}
	invoice, err := h.svc.Invoices.Approve(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

func (h *Handler) RenderInvoiceDocument(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "invoiceId")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}
	invoice, err := h.svc.Invoices.RenderDocument(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"document_url": invoice.DocumentURL})
}

func (h *Handler) StudentPaid(c *fiber.Ctx) error {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return badRequest(c, "Invalid student ID")
	}
	paid, err := h.svc.Invoices.StudentPaid(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"paid": paid})
}
