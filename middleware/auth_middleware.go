package middleware

import (
	"errors"
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var errBadClaims = errors.New("token does not identify a user")

// GenerateToken signs a token carrying the user's id and role.
func GenerateToken(user models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Missing or malformed JWT"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"error": "Invalid or expired JWT"})
}

// CurrentActor reads the caller from the token validated by Protected.
func CurrentActor(c *fiber.Ctx) (models.Actor, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return models.Actor{}, errBadClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, errBadClaims
	}
	rawID, _ := claims["user_id"].(string)
	rawRole, _ := claims["role"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.Actor{}, errBadClaims
	}
	role := models.Role(rawRole)
	if !role.Valid() {
		return models.Actor{}, errBadClaims
	}
	return models.Actor{ID: id, Role: role}, nil
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := CurrentActor(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: " + string(roles[0]) + " access required",
		})
	}
}

func AdminRequired() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}

func TutorRequired() fiber.Handler {
	return RequireRole(models.RoleTutor)
}

func StudentRequired() fiber.Handler {
	return RequireRole(models.RoleStudent)
}
