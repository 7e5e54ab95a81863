package handlers

import (
	"errors"
	"strings"

	"github.com/anjiri1684/course_marketplace/database"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var catalogSort = map[string]string{
	"price-lowtohigh": "pricing asc",
	"price-hightolow": "pricing desc",
	"title-atoz":      "title asc",
	"title-ztoa":      "title desc",
}

func splitFilter(raw string) []string {
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func GetAllStudentViewCourses(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Course{})
	for param, column := range map[string]string{
		"category":        "category",
		"level":           "level",
		"primaryLanguage": "primary_language",
	} {
		if values := splitFilter(c.Query(param)); len(values) > 0 {
			query = query.Where(column+" IN ?", values)
		}
	}

	order, ok := catalogSort[c.Query("sortBy", "price-lowtohigh")]
	if !ok {
		order = catalogSort["price-lowtohigh"]
	}

	var courses []models.Course
	if err := query.Preload("Curriculum", models.PreloadCurriculum).Order(order).Find(&courses).Error; err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": courses})
}

func GetStudentViewCourseDetails(c *fiber.Ctx) error {
	course, err := findCourse(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, fiber.StatusNotFound, "No course details found", nil)
		}
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": course})
}

func CheckCoursePurchaseInfo(c *fiber.Ctx) error {
	purchased, err := services.HasPurchased(c.UserContext(), database.DB, c.Params("studentId"), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": purchased})
}

func GetCoursesByStudentID(c *fiber.Ctx) error {
	var history models.StudentCourses
	err := database.DB.
		Preload("Courses", models.PreloadPurchases).
		First(&history, "user_id = ?", c.Params("studentId")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, fiber.StatusNotFound, "No courses found for this student", nil)
		}
		return respondServiceError(c, err)
	}

	courses := history.Courses
	if courses == nil {
		courses = []models.StudentCourseItem{}
	}
	return c.JSON(fiber.Map{"success": true, "data": courses})
}
