package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_scheduler/middleware"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	FullName string `json:"full_name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register signs up a student. Tutors and admins are created by an admin.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.svc.Users.CreateUser(c.UserContext(), services.NewUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     models.RoleStudent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newUserResponse(user))
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := h.parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.svc.Users.Authenticate(c.UserContext(), req.Login, req.Password)
	if utils.KindOf(err) == utils.KindNotAuthorized {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid login or password"})
	}
	if err != nil {
		return respondError(c, err)
	}

	t, err := middleware.GenerateToken(*user, h.cfg.JWTSecret, h.cfg.JWTTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}
	return c.JSON(fiber.Map{"token": t, "user": newUserResponse(user)})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	user, err := h.svc.Users.GetUser(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newUserResponse(user))
}
