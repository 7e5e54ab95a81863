package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID              string          `gorm:"primaryKey;size:36" json:"_id"`
	InstructorID    string          `gorm:"size:64;not null;index" json:"instructorId"`
	InstructorName  string          `gorm:"size:255" json:"instructorName"`
	Date            time.Time       `json:"date"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	Category        string          `gorm:"size:100;index" json:"category"`
	Level           string          `gorm:"size:50;index" json:"level"`
	PrimaryLanguage string          `gorm:"size:50;index" json:"primaryLanguage"`
	Subtitle        string          `gorm:"size:255" json:"subtitle"`
	Description     string          `gorm:"type:text" json:"description"`
	Image           string          `gorm:"type:text" json:"image"`
	WelcomeMessage  string          `gorm:"type:text" json:"welcomeMessage"`
	Pricing         float64         `gorm:"type:numeric(10,2);not null;default:0" json:"pricing"`
	Objectives      string          `gorm:"type:text" json:"objectives"`
	IsPublished     bool            `json:"isPublised"`
	Curriculum      []Lecture       `gorm:"foreignKey:CourseID" json:"curriculum"`
	Students        []CourseStudent `gorm:"foreignKey:CourseID" json:"students"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Lecture is one curriculum entry; Position keeps the authored order.
type Lecture struct {
	ID          string `gorm:"primaryKey;size:36" json:"_id"`
	CourseID    string `gorm:"size:36;not null;index" json:"-"`
	Position    int    `gorm:"not null;default:0" json:"-"`
	Title       string `gorm:"size:255;not null" json:"title"`
	VideoURL    string `gorm:"type:text" json:"videoUrl"`
	PublicID    string `gorm:"size:255" json:"public_id"`
	FreePreview bool   `json:"freePreview"`
}

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// CourseStudent is a roster entry. (CourseID, StudentID) is unique, so the
// roster behaves as a set.
type CourseStudent struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id"`
	CourseID     string    `gorm:"size:36;not null;uniqueIndex:idx_course_student" json:"-"`
	StudentID    string    `gorm:"size:64;not null;uniqueIndex:idx_course_student" json:"studentId"`
	StudentName  string    `gorm:"size:255" json:"studentName"`
	StudentEmail string    `gorm:"size:255" json:"studentEmail"`
	PaidAmount   string    `gorm:"size:20" json:"paidAmount"`
	CreatedAt    time.Time `json:"-"`
}

func (s *CourseStudent) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// PreloadCurriculum loads lectures in authored order.
func PreloadCurriculum(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
