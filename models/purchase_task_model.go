package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskKindStudentCourses = "student_courses"
	TaskKindCourseRoster   = "course_roster"

	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"
)

// PurchaseTaskKinds lists the projections every confirmed order must produce.
var PurchaseTaskKinds = []string{TaskKindStudentCourses, TaskKindCourseRoster}

// PurchaseTask is an outbox row for one post-capture projection of an order.
type PurchaseTask struct {
	ID        string     `gorm:"primaryKey;size:36" json:"_id"`
	OrderID   string     `gorm:"size:36;not null;uniqueIndex:idx_purchase_task" json:"orderId"`
	Kind      string     `gorm:"size:32;not null;uniqueIndex:idx_purchase_task" json:"kind"`
	Status    string     `gorm:"size:20;not null;index" json:"status"`
	Attempts  int        `gorm:"not null;default:0" json:"attempts"`
	LastError *string    `gorm:"type:text" json:"lastError"`
	AppliedAt *time.Time `json:"appliedAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (t *PurchaseTask) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
