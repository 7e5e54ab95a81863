package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/course_marketplace/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgNotPurchased     = "You need to purchase this course to access it."
	msgNoProgress       = "No progress found, you can start watching the course"
	msgCourseNotFound   = "Course not found"
	msgProgressNotFound = "Progress not found!"
)

// CertificateIssuer issues the certificate of a completed course.
type CertificateIssuer interface {
	Issue(ctx context.Context, progress *models.CourseProgress, course *models.Course) error
}

type ProgressService struct {
	db           *gorm.DB
	certificates CertificateIssuer
	background   func(func())
}

func NewProgressService(db *gorm.DB, certificates CertificateIssuer) *ProgressService {
	return &ProgressService{
		db:           db,
		certificates: certificates,
		background:   func(fn func()) { go fn() },
	}
}

type ProgressView struct {
	IsPurchased    bool                     `json:"isPurchased"`
	CourseDetails  *models.Course           `json:"courseDetails,omitempty"`
	Progress       []models.LectureProgress `json:"progress"`
	Completed      bool                     `json:"completed"`
	CompletionDate *time.Time               `json:"completionDate"`
	CertificateURL *string                  `json:"certificateUrl"`
	Message        string                   `json:"-"`
}

// HasPurchased reports whether the student's purchase history holds the course.
func (s *ProgressService) HasPurchased(ctx context.Context, userID, courseID string) (bool, error) {
	return HasPurchased(ctx, s.db, userID, courseID)
}

func HasPurchased(ctx context.Context, db *gorm.DB, userID, courseID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.StudentCourseItem{}).
		Joins("JOIN student_courses ON student_courses.id = student_course_items.student_courses_id").
		Where("student_courses.user_id = ? AND student_course_items.course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check purchase of course %s: %w", courseID, err)
	}
	return count > 0, nil
}

func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID string) (*ProgressView, error) {
	purchased, err := s.HasPurchased(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return &ProgressView{IsPurchased: false, Message: msgNotPurchased}, nil
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	progress, err := s.findProgress(ctx, userID, courseID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if progress == nil || len(progress.LecturesProgress) == 0 {
		return &ProgressView{
			IsPurchased:   true,
			CourseDetails: course,
			Progress:      []models.LectureProgress{},
			Message:       msgNoProgress,
		}, nil
	}

	return &ProgressView{
		IsPurchased:    true,
		CourseDetails:  course,
		Progress:       progress.LecturesProgress,
		Completed:      progress.Completed,
		CompletionDate: progress.CompletionDate,
		CertificateURL: progress.CertificateURL,
	}, nil
}

// MarkLectureViewed records the lecture as viewed and completes the course
// once every curriculum lecture has been viewed.
func (s *ProgressService) MarkLectureViewed(ctx context.Context, userID, courseID, lectureID string) (*models.CourseProgress, error) {
	if userID == "" || courseID == "" || lectureID == "" {
		return nil, newError(ErrInvalid, "userId, courseId and lectureId are required")
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var (
		progress      models.CourseProgress
		justCompleted bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.CourseProgress{UserID: userID, CourseID: courseID}).
			FirstOrCreate(&progress).Error; err != nil {
			return err
		}

		viewed := models.LectureProgress{
			CourseProgressID: progress.ID,
			LectureID:        lectureID,
			Viewed:           true,
			DateViewed:       now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_progress_id"}, {Name: "lecture_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"viewed", "date_viewed"}),
		}).Create(&viewed).Error; err != nil {
			return err
		}

		if progress.Completed || len(course.Curriculum) == 0 {
			return nil
		}

		lectureIDs := make([]string, 0, len(course.Curriculum))
		for _, lecture := range course.Curriculum {
			lectureIDs = append(lectureIDs, lecture.ID)
		}
		var viewedCount int64
		if err := tx.Model(&models.LectureProgress{}).
			Where("course_progress_id = ? AND viewed = ? AND lecture_id IN ?", progress.ID, true, lectureIDs).
			Count(&viewedCount).Error; err != nil {
			return err
		}
		if int(viewedCount) < len(lectureIDs) {
			return nil
		}

		justCompleted = true
		return tx.Model(&models.CourseProgress{}).Where("id = ?", progress.ID).Updates(map[string]any{
			"completed":       true,
			"completion_date": now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("mark lecture %s viewed: %w", lectureID, err)
	}

	updated, err := s.findProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	if justCompleted && s.certificates != nil {
		snapshot := *updated
		s.background(func() {
			if err := s.certificates.Issue(context.Background(), &snapshot, course); err != nil {
				log.Printf("🔥 Failed to issue certificate for course %s to user %s: %v", course.ID, userID, err)
			}
		})
	}
	return updated, nil
}

func (s *ProgressService) ResetProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	progress, err := s.findProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_progress_id = ?", progress.ID).Delete(&models.LectureProgress{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.CourseProgress{}).Where("id = ?", progress.ID).Updates(map[string]any{
			"completed":       false,
			"completion_date": nil,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("reset progress %s: %w", progress.ID, err)
	}

	progress.LecturesProgress = []models.LectureProgress{}
	progress.Completed = false
	progress.CompletionDate = nil
	return progress, nil
}

func (s *ProgressService) findProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := s.db.WithContext(ctx).
		Preload("LecturesProgress", func(db *gorm.DB) *gorm.DB { return db.Order("date_viewed asc") }).
		First(&progress, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, msgProgressNotFound)
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return &progress, nil
}

func (s *ProgressService) loadCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Curriculum", models.PreloadCurriculum).
		First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, msgCourseNotFound)
		}
		return nil, fmt.Errorf("load course %s: %w", courseID, err)
	}
	return &course, nil
}
