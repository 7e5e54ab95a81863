package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseProgress struct {
	ID               string            `gorm:"primaryKey;size:36" json:"_id"`
	UserID           string            `gorm:"size:64;not null;uniqueIndex:idx_user_course" json:"userId"`
	CourseID         string            `gorm:"size:64;not null;uniqueIndex:idx_user_course" json:"courseId"`
	Completed        bool              `json:"completed"`
	CompletionDate   *time.Time        `json:"completionDate"`
	CertificateURL   *string           `gorm:"type:text" json:"certificateUrl"`
	LecturesProgress []LectureProgress `gorm:"foreignKey:CourseProgressID" json:"lecturesProgress"`
	CreatedAt        time.Time         `json:"-"`
	UpdatedAt        time.Time         `json:"-"`
}

func (p *CourseProgress) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

type LectureProgress struct {
	ID               string    `gorm:"primaryKey;size:36" json:"_id"`
	CourseProgressID string    `gorm:"size:36;not null;uniqueIndex:idx_progress_lecture" json:"-"`
	LectureID        string    `gorm:"size:64;not null;uniqueIndex:idx_progress_lecture" json:"lectureId"`
	Viewed           bool      `json:"viewed"`
	DateViewed       time.Time `json:"dateViewed"`
}

func (l *LectureProgress) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}
