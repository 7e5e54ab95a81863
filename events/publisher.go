// Package events publishes purchase lifecycle events to downstream consumers.
package events

import (
	"context"
	"log"
	"time"
)

const TypePurchaseCompleted = "purchase.completed"

// PurchaseCompleted is emitted once an order has been captured and confirmed.
type PurchaseCompleted struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail"`
	CourseID    string    `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	Amount      string    `json:"amount"`
	PaymentID   string    `json:"paymentId"`
	PayerID     string    `json:"payerId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishPurchaseCompleted(ctx context.Context, event PurchaseCompleted) error
}

// NopPublisher is used when no queue is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPurchaseCompleted(_ context.Context, event PurchaseCompleted) error {
	log.Printf("⚠️ No event queue configured, dropping %s for order %s", TypePurchaseCompleted, event.OrderID)
	return nil
}
