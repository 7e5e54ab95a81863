package handlers

import (
	"errors"
	"time"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/database"
	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	UserName  string `json:"userName" validate:"required"`
	UserEmail string `json:"userEmail" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"omitempty,oneof=user instructor"`
}

type LoginRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := bindJSON(c, &req, "Invalid registration details"); !ok {
		return err
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	var existing models.User
	err := database.DB.Where("user_name = ? OR user_email = ?", req.UserName, req.UserEmail).First(&existing).Error
	if err == nil {
		return respondError(c, fiber.StatusBadRequest, "User name or user email already exists", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondServiceError(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}

	user := models.User{
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Password:  string(hashedPassword),
		Role:      req.Role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully!",
	})
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bindJSON(c, &req, "Invalid login details"); !ok {
		return err
	}

	var user models.User
	if err := database.DB.Where("user_email = ?", req.UserEmail).First(&user).Error; err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	authUser := middleware.AuthUser{
		ID:        user.ID,
		UserName:  user.UserName,
		UserEmail: user.UserEmail,
		Role:      user.Role,
	}
	accessToken, err := issueToken(authUser, []byte(config.Config("JWT_SECRET")), config.Duration("JWT_EXPIRY", 120*time.Minute))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create token", nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"data": fiber.Map{
			"accessToken": accessToken,
			"user":        authUser,
		},
	})
}

func CheckAuth(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "User is not authenticated", nil)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Authenticated user!",
		"data":    fiber.Map{"user": user},
	})
}

func issueToken(user middleware.AuthUser, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"_id":       user.ID,
		"userName":  user.UserName,
		"userEmail": user.UserEmail,
		"role":      user.Role,
		"exp":       time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
