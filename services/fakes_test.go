package services

import (
	"context"
	"sync"

	"github.com/anjiri1684/course_marketplace/events"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/anjiri1684/course_marketplace/payments"
)

type stubGateway struct {
	mu           sync.Mutex
	createFn     func(ctx context.Context, req payments.PaymentRequest) (*payments.CreatedPayment, error)
	executeErr   error
	createCalls  int
	executeCalls int
	lastCreate   payments.PaymentRequest
}

func (g *stubGateway) CreatePayment(ctx context.Context, req payments.PaymentRequest) (*payments.CreatedPayment, error) {
	g.mu.Lock()
	g.createCalls++
	g.lastCreate = req
	fn := g.createFn
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &payments.CreatedPayment{
		ID:     "PAY-1",
		Status: "CREATED",
		Links:  []payments.Link{{Rel: "approve", Href: "https://paypal.test/checkoutnow?token=PAY-1"}},
	}, nil
}

func (g *stubGateway) ExecutePayment(_ context.Context, paymentID, payerID string) (*payments.ExecutedPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.executeCalls++
	if g.executeErr != nil {
		return nil, g.executeErr
	}
	return &payments.ExecutedPayment{ID: paymentID, Status: "COMPLETED", PayerID: payerID}, nil
}

type recordingEvents struct {
	mu        sync.Mutex
	published []events.PurchaseCompleted
}

func (r *recordingEvents) PublishPurchaseCompleted(_ context.Context, event events.PurchaseCompleted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, event)
	return nil
}

type recordingMailer struct {
	mu     sync.Mutex
	orders []models.Order
}

func (m *recordingMailer) SendPurchaseConfirmation(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *order)
	return nil
}

type statusChange struct {
	OrderID, OrderStatus, PaymentStatus string
}

type recordingStatus struct {
	mu      sync.Mutex
	changes []statusChange
}

func (r *recordingStatus) Publish(orderID, orderStatus, paymentStatus string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, statusChange{orderID, orderStatus, paymentStatus})
}
