package handlers

import (
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	RecipientID *uuid.UUID `json:"recipient_id"`
	Subject     string     `json:"subject" validate:"max=255"`
	Body        string     `json:"body" validate:"required"`
	ReplyOfID   *uuid.UUID `json:"reply_of_id"`
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	var req SendMessageRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	msg, err := h.svc.Messages.Send(c.UserContext(), actor, services.NewMessage{
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Body:        req.Body,
		ReplyOfID:   req.ReplyOfID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetMessages returns the inbox, or sent messages with ?box=sent.
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	list := h.svc.Messages.Inbox
	if c.Query("box") == "sent" {
		list = h.svc.Messages.Sent
	}
	msgs, err := list(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

func (h *Handler) GetThread(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "messageId")
	if !ok {
		return badRequest(c, "Invalid message ID")
	}
	thread, err := h.svc.Messages.Thread(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(thread)
}

func (h *Handler) MarkMessageRead(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "messageId")
	if !ok {
		return badRequest(c, "Invalid message ID")
	}
	if err := h.svc.Messages.MarkRead(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
