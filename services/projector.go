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

// MaxTaskAttempts is how many times a purchase task is tried before it is
// parked as failed.
const MaxTaskAttempts = 5

// Projector applies the purchase tasks written when an order is confirmed.
// Every projection is keyed by order id, so applying a task twice changes
// nothing.
type Projector struct {
	db *gorm.DB
}

type ReconcileResult struct {
	Scanned int
	Applied int
	Failed  int
}

func NewProjector(db *gorm.DB) *Projector {
	return &Projector{db: db}
}

func (p *Projector) Apply(ctx context.Context, task *models.PurchaseTask) error {
	if task.Status != models.TaskStatusPending {
		return nil
	}

	now := time.Now()
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", task.OrderID).Error; err != nil {
			return fmt.Errorf("load order %s: %w", task.OrderID, err)
		}

		var err error
		switch task.Kind {
		case models.TaskKindStudentCourses:
			purchasedAt := now
			if order.PaidAt != nil {
				purchasedAt = *order.PaidAt
			}
			err = projectStudentCourses(tx, &order, purchasedAt)
		case models.TaskKindCourseRoster:
			err = projectCourseRoster(tx, &order)
		default:
			err = fmt.Errorf("unknown purchase task kind %q", task.Kind)
		}
		if err != nil {
			return err
		}

		return tx.Model(&models.PurchaseTask{}).Where("id = ?", task.ID).Updates(map[string]any{
			"status":     models.TaskStatusDone,
			"applied_at": now,
			"last_error": nil,
		}).Error
	})
	if err != nil {
		p.recordFailure(ctx, task, err)
		return fmt.Errorf("apply %s for order %s: %w", task.Kind, task.OrderID, err)
	}

	task.Status = models.TaskStatusDone
	task.AppliedAt = &now
	task.LastError = nil
	return nil
}

// ApplyPending applies the pending tasks of one order and joins their errors.
func (p *Projector) ApplyPending(ctx context.Context, orderID string) error {
	var tasks []models.PurchaseTask
	if err := p.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, models.TaskStatusPending).
		Order("created_at asc").
		Find(&tasks).Error; err != nil {
		return fmt.Errorf("load tasks of order %s: %w", orderID, err)
	}

	var errs []error
	for i := range tasks {
		if err := p.Apply(ctx, &tasks[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reconcile retries up to limit pending tasks, oldest first.
func (p *Projector) Reconcile(ctx context.Context, limit int) (ReconcileResult, error) {
	var result ReconcileResult

	var tasks []models.PurchaseTask
	if err := p.db.WithContext(ctx).
		Where("status = ?", models.TaskStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return result, fmt.Errorf("load pending purchase tasks: %w", err)
	}

	result.Scanned = len(tasks)
	for i := range tasks {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := p.Apply(ctx, &tasks[i]); err != nil {
			log.Printf("⚠️ %v", err)
			result.Failed++
			continue
		}
		result.Applied++
	}
	return result, nil
}

func (p *Projector) recordFailure(ctx context.Context, task *models.PurchaseTask, cause error) {
	attempts := task.Attempts + 1
	status := models.TaskStatusPending
	if attempts >= MaxTaskAttempts {
		status = models.TaskStatusFailed
	}
	message := cause.Error()

	err := p.db.WithContext(ctx).Model(&models.PurchaseTask{}).Where("id = ?", task.ID).Updates(map[string]any{
		"attempts":   attempts,
		"status":     status,
		"last_error": message,
	}).Error
	if err != nil {
		log.Printf("🔥 Failed to record failure of task %s: %v", task.ID, err)
		return
	}

	task.Attempts = attempts
	task.Status = status
	task.LastError = &message
	if status == models.TaskStatusFailed {
		log.Printf("🔥 Purchase task %s (%s) for order %s gave up after %d attempts: %v", task.ID, task.Kind, task.OrderID, attempts, cause)
	}
}

func projectStudentCourses(tx *gorm.DB, order *models.Order, purchasedAt time.Time) error {
	var history models.StudentCourses
	if err := tx.Where(models.StudentCourses{UserID: order.UserID}).FirstOrCreate(&history).Error; err != nil {
		return fmt.Errorf("upsert courses of student %s: %w", order.UserID, err)
	}

	item := models.StudentCourseItem{
		StudentCoursesID: history.ID,
		OrderID:          order.ID,
		CourseID:         order.CourseID,
		Title:            order.CourseTitle,
		InstructorID:     order.InstructorID,
		InstructorName:   order.InstructorName,
		DateOfPurchase:   purchasedAt,
		CourseImage:      order.CourseImage,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("append purchase of order %s: %w", order.ID, err)
	}
	return nil
}

func projectCourseRoster(tx *gorm.DB, order *models.Order) error {
	var course models.Course
	if err := tx.Select("id").First(&course, "id = ?", order.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %s not found", order.CourseID)
		}
		return fmt.Errorf("load course %s: %w", order.CourseID, err)
	}

	student := models.CourseStudent{
		CourseID:     course.ID,
		StudentID:    order.UserID,
		StudentName:  order.UserName,
		StudentEmail: order.UserEmail,
		PaidAmount:   order.CoursePricing,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&student).Error
	if err != nil {
		return fmt.Errorf("add student %s to course %s: %w", order.UserID, course.ID, err)
	}
	return nil
}
