package handlers

import (
	"errors"
	"time"

	"github.com/anjiri1684/course_marketplace/database"
	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

type LectureRequest struct {
	Title       string `json:"title" validate:"required"`
	VideoURL    string `json:"videoUrl"`
	PublicID    string `json:"public_id"`
	FreePreview bool   `json:"freePreview"`
}

type CourseRequest struct {
	InstructorID    string           `json:"instructorId"`
	InstructorName  string           `json:"instructorName"`
	Date            *time.Time       `json:"date"`
	Title           string           `json:"title" validate:"required"`
	Category        string           `json:"category"`
	Level           string           `json:"level"`
	PrimaryLanguage string           `json:"primaryLanguage"`
	Subtitle        string           `json:"subtitle"`
	Description     string           `json:"description"`
	Image           string           `json:"image"`
	WelcomeMessage  string           `json:"welcomeMessage"`
	Pricing         interface{}      `json:"pricing"`
	Objectives      string           `json:"objectives"`
	IsPublished     bool             `json:"isPublised"`
	Curriculum      []LectureRequest `json:"curriculum" validate:"dive"`
}

func (r *CourseRequest) apply(course *models.Course) error {
	pricing, err := cast.ToFloat64E(r.Pricing)
	if err != nil || pricing < 0 {
		return errors.New("invalid course pricing")
	}

	course.Title = r.Title
	course.Category = r.Category
	course.Level = r.Level
	course.PrimaryLanguage = r.PrimaryLanguage
	course.Subtitle = r.Subtitle
	course.Description = r.Description
	course.Image = r.Image
	course.WelcomeMessage = r.WelcomeMessage
	course.Pricing = pricing
	course.Objectives = r.Objectives
	course.IsPublished = r.IsPublished
	if r.Date != nil {
		course.Date = *r.Date
	}

	course.Curriculum = make([]models.Lecture, 0, len(r.Curriculum))
	for i, lecture := range r.Curriculum {
		course.Curriculum = append(course.Curriculum, models.Lecture{
			CourseID:    course.ID,
			Position:    i,
			Title:       lecture.Title,
			VideoURL:    lecture.VideoURL,
			PublicID:    lecture.PublicID,
			FreePreview: lecture.FreePreview,
		})
	}
	return nil
}

func AddNewCourse(c *fiber.Ctx) error {
	caller, _ := middleware.CurrentUser(c)
	req := new(CourseRequest)
	if ok, err := bindJSON(c, req, "Invalid course details"); !ok {
		return err
	}

	course := models.Course{
		InstructorID:   caller.ID,
		InstructorName: caller.UserName,
		Date:           time.Now(),
	}
	if req.InstructorName != "" {
		course.InstructorName = req.InstructorName
	}
	if err := req.apply(&course); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid course details", err.Error())
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Course saved successfully",
		"data":    course,
	})
}

func GetAllCourses(c *fiber.Ctx) error {
	caller, _ := middleware.CurrentUser(c)

	var courses []models.Course
	if err := database.DB.
		Preload("Curriculum", models.PreloadCurriculum).
		Preload("Students").
		Where("instructor_id = ?", caller.ID).
		Order("created_at desc").
		Find(&courses).Error; err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": courses})
}

func GetCourseDetailsByID(c *fiber.Ctx) error {
	course, err := findCourse(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, fiber.StatusNotFound, "Course not found!", nil)
		}
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": course})
}

// UpdateCourseByID replaces the course fields and its whole curriculum.
func UpdateCourseByID(c *fiber.Ctx) error {
	caller, _ := middleware.CurrentUser(c)

	course, err := findCourse(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, fiber.StatusNotFound, "Course not found!", nil)
		}
		return respondServiceError(c, err)
	}
	if course.InstructorID != caller.ID {
		return respondError(c, fiber.StatusForbidden, "You can only update your own courses", nil)
	}

	req := new(CourseRequest)
	if ok, err := bindJSON(c, req, "Invalid course details"); !ok {
		return err
	}
	if err := req.apply(course); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid course details", err.Error())
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Curriculum", "Students").Save(course).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lecture{}).Error; err != nil {
			return err
		}
		if len(course.Curriculum) == 0 {
			return nil
		}
		return tx.Create(&course.Curriculum).Error
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Course updated successfully",
		"data":    course,
	})
}

func findCourse(id string) (*models.Course, error) {
	var course models.Course
	err := database.DB.
		Preload("Curriculum", models.PreloadCurriculum).
		Preload("Students").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}
