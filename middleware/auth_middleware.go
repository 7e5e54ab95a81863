package middleware

import (
	"strings"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

// AuthUser is the identity carried in the access token.
type AuthUser struct {
	ID        string `json:"_id"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Role      string `json:"role"`
}

func Protected() fiber.Handler {
	return ProtectedWith([]byte(config.Config("JWT_SECRET")))
}

func ProtectedWith(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   secret,
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"success": false, "message": "User is not authenticated"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"success": false, "message": "Invalid token"})
}

// CurrentUser reads the identity stored by Protected.
func CurrentUser(c *fiber.Ctx) (AuthUser, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return AuthUser{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthUser{}, false
	}
	return ClaimsUser(claims), true
}

func ClaimsUser(claims jwt.MapClaims) AuthUser {
	user := AuthUser{}
	user.ID, _ = claims["_id"].(string)
	user.UserName, _ = claims["userName"].(string)
	user.UserEmail, _ = claims["userEmail"].(string)
	user.Role, _ = claims["role"].(string)
	return user
}

func InstructorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok || user.Role != models.RoleInstructor {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: Instructor access required",
			})
		}
		return c.Next()
	}
}
