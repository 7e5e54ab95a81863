package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusFailed    = "failed"

	PaymentStatusInitiated = "initiated"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"

	PaymentMethodPayPal = "paypal"
)

type Order struct {
	ID             string     `gorm:"primaryKey;size:36" json:"_id"`
	UserID         string     `gorm:"size:64;not null;index" json:"userId"`
	UserName       string     `gorm:"size:255" json:"userName"`
	UserEmail      string     `gorm:"size:255" json:"userEmail"`
	OrderStatus    string     `gorm:"size:20;not null;index" json:"orderStatus"`
	PaymentMethod  string     `gorm:"size:20;not null" json:"paymentMethod"`
	PaymentStatus  string     `gorm:"size:20;not null" json:"paymentStatus"`
	OrderDate      time.Time  `gorm:"not null" json:"orderDate"`
	PaymentID      *string    `gorm:"size:255;index" json:"paymentId"`
	PayerID        *string    `gorm:"size:255" json:"payerId"`
	PaidAt         *time.Time `json:"paidAt"`
	InstructorID   string     `gorm:"size:64" json:"instructorId"`
	InstructorName string     `gorm:"size:255" json:"instructorName"`
	CourseImage    string     `gorm:"type:text" json:"courseImage"`
	CourseTitle    string     `gorm:"size:255;not null" json:"courseTitle"`
	CourseID       string     `gorm:"size:64;not null;index" json:"courseId"`
	CoursePricing  string     `gorm:"size:20;not null" json:"coursePricing"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	assignID(&o.ID)
	return nil
}

func (o *Order) IsPaid() bool {
	return o.OrderStatus == OrderStatusConfirmed && o.PaymentStatus == PaymentStatusPaid
}
