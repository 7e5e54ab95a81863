package models

import (
	"time"

	"gorm.io/gorm"
)

// StudentCourses is the per-student purchase history read model.
type StudentCourses struct {
	ID        string              `gorm:"primaryKey;size:36" json:"_id"`
	UserID    string              `gorm:"size:64;not null;uniqueIndex" json:"userId"`
	Courses   []StudentCourseItem `gorm:"foreignKey:StudentCoursesID" json:"courses"`
	CreatedAt time.Time           `json:"-"`
	UpdatedAt time.Time           `json:"-"`
}

func (StudentCourses) TableName() string {
	return "student_courses"
}

func (s *StudentCourses) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// StudentCourseItem is one purchased course. OrderID is unique so an order is
// reflected at most once.
type StudentCourseItem struct {
	ID               string    `gorm:"primaryKey;size:36" json:"_id"`
	StudentCoursesID string    `gorm:"size:36;not null;index" json:"-"`
	OrderID          string    `gorm:"size:36;not null;uniqueIndex" json:"-"`
	CourseID         string    `gorm:"size:64;not null;index" json:"courseId"`
	Title            string    `gorm:"size:255" json:"title"`
	InstructorID     string    `gorm:"size:64" json:"instructorId"`
	InstructorName   string    `gorm:"size:255" json:"instructorName"`
	DateOfPurchase   time.Time `json:"dateOfPurchase"`
	CourseImage      string    `gorm:"type:text" json:"courseImage"`
}

func (StudentCourseItem) TableName() string {
	return "student_course_items"
}

func (i *StudentCourseItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// PreloadPurchases loads purchase history oldest first.
func PreloadPurchases(db *gorm.DB) *gorm.DB {
	return db.Order("date_of_purchase asc")
}
