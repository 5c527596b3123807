package handlers

import (
	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/gofiber/fiber/v2"
)

type CreateUserRequest struct {
	Username string      `json:"username" validate:"required,username"`
	FullName string      `json:"full_name" validate:"required,min=3"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=admin tutor student"`
}

type LanguageRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) AdminCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	user, err := h.svc.Users.CreateUser(c.UserContext(), services.NewUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newUserResponse(user))
}

func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	users, err := h.svc.Users.ListUsers(c.UserContext(), actor, models.Role(c.Query("role")))
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = newUserResponse(&users[i])
	}
	return c.JSON(resp)
}

func (h *Handler) AdminDeleteUser(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	if err := h.svc.Users.DeleteUser(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) CreateLanguage(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	var req LanguageRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	lang, err := h.svc.Languages.Create(c.UserContext(), actor, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lang)
}

func (h *Handler) DeleteLanguage(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "languageId")
	if !ok {
		return badRequest(c, "Invalid language ID")
	}
	if err := h.svc.Languages.Delete(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListLanguages(c *fiber.Ctx) error {
	langs, err := h.svc.Languages.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(langs)
}

func (h *Handler) ListTutorLanguages(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	langs, err := h.svc.Languages.TutorLanguages(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(langs)
}

func (h *Handler) AddTutorLanguage(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "languageId")
	if !ok {
		return badRequest(c, "Invalid language ID")
	}
	if err := h.svc.Languages.AddToTutor(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) RemoveTutorLanguage(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, ok := paramID(c, "languageId")
	if !ok {
		return badRequest(c, "Invalid language ID")
	}
	if err := h.svc.Languages.RemoveFromTutor(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
