package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/course_marketplace/events"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/anjiri1684/course_marketplace/payments"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxItemNameLength = 127

	msgPayPalMissing    = "PayPal configuration missing. Please set PAYPAL_CLIENT_ID and PAYPAL_SECRET_ID in your environment variables."
	msgClientURLMissing = "Missing CLIENT_URL configuration. Please set the CLIENT_URL environment variable."
	msgMissingFields    = "Missing required fields for payment creation"
	msgInvalidPricing   = "Invalid course pricing value"
	msgCreateFailed     = "Error while creating PayPal payment"
	msgNoApprovalURL    = "PayPal response missing approval URL"
	msgMissingPayment   = "Missing required payment information"
	msgOrderNotFound    = "Order cannot be found"
	msgPaymentMismatch  = "Payment does not belong to this order"
	msgExecuteFailed    = "Error executing PayPal payment"
)

// Mailer sends the buyer-facing purchase confirmation.
type Mailer interface {
	SendPurchaseConfirmation(ctx context.Context, order *models.Order) error
}

// StatusPublisher is notified of every order status transition.
type StatusPublisher interface {
	Publish(orderID, orderStatus, paymentStatus string)
}

type OrderDeps struct {
	DB             *gorm.DB
	Gateway        payments.Gateway
	Projector      *Projector
	Events         events.Publisher
	Mailer         Mailer
	Status         StatusPublisher
	ClientURL      string
	Currency       string
	GatewayTimeout time.Duration
}

type OrderService struct {
	db        *gorm.DB
	gateway   payments.Gateway
	projector *Projector
	events    events.Publisher
	mailer    Mailer
	status    StatusPublisher
	clientURL string
	currency  string
	timeout   time.Duration

	// background runs fire-and-forget work; tests replace it to run inline.
	background func(func())
}

func NewOrderService(deps OrderDeps) *OrderService {
	s := &OrderService{
		db:         deps.DB,
		gateway:    deps.Gateway,
		projector:  deps.Projector,
		events:     deps.Events,
		mailer:     deps.Mailer,
		status:     deps.Status,
		clientURL:  strings.TrimRight(deps.ClientURL, "/"),
		currency:   deps.Currency,
		timeout:    deps.GatewayTimeout,
		background: func(fn func()) { go fn() },
	}
	if s.projector == nil {
		s.projector = NewProjector(deps.DB)
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.currency == "" {
		s.currency = "USD"
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	return s
}

type CreateOrderInput struct {
	UserID         string      `json:"userId"`
	UserName       string      `json:"userName"`
	UserEmail      string      `json:"userEmail"`
	InstructorID   string      `json:"instructorId"`
	InstructorName string      `json:"instructorName"`
	CourseImage    string      `json:"courseImage"`
	CourseTitle    string      `json:"courseTitle"`
	CourseID       string      `json:"courseId"`
	CoursePricing  interface{} `json:"coursePricing"`
}

type CreatedOrder struct {
	ApproveURL string `json:"approveUrl"`
	OrderID    string `json:"orderId"`
	PaymentID  string `json:"paymentId"`
}

type CaptureInput struct {
	PaymentID string `json:"paymentId"`
	PayerID   string `json:"payerId"`
	OrderID   string `json:"orderId"`
}

type CapturedOrder struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	PayerID   string `json:"payerId"`
}

// CreateOrder persists a pending order and opens a gateway payment for it.
// The order row exists before the gateway is called so its id can be embedded
// in the return URL; a gateway failure leaves it failed.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error) {
	if s.gateway == nil {
		return nil, newError(ErrMisconfigured, msgPayPalMissing)
	}
	if s.clientURL == "" {
		log.Println("🔥 CLIENT_URL is not defined and no fallback is available")
		return nil, newError(ErrMisconfigured, msgClientURLMissing)
	}

	if in.UserID == "" || in.CourseID == "" || in.CourseTitle == "" || isBlank(in.CoursePricing) {
		return nil, newError(ErrInvalid, msgMissingFields)
	}
	price, err := parsePrice(in.CoursePricing)
	if err != nil {
		return nil, newError(ErrInvalid, msgInvalidPricing)
	}

	order := models.Order{
		UserID:         in.UserID,
		UserName:       in.UserName,
		UserEmail:      in.UserEmail,
		OrderStatus:    models.OrderStatusPending,
		PaymentMethod:  models.PaymentMethodPayPal,
		PaymentStatus:  models.PaymentStatusInitiated,
		OrderDate:      time.Now(),
		InstructorID:   in.InstructorID,
		InstructorName: in.InstructorName,
		CourseImage:    in.CourseImage,
		CourseTitle:    in.CourseTitle,
		CourseID:       in.CourseID,
		CoursePricing:  price.StringFixed(2),
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.publishStatus(&order)

	name := truncate(in.CourseTitle, maxItemNameLength)
	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.gateway.CreatePayment(gwCtx, payments.PaymentRequest{
		ReferenceID: order.ID,
		Description: "Purchase of " + name,
		Currency:    s.currency,
		Total:       price,
		Items: []payments.PaymentItem{
			{Name: name, SKU: in.CourseID, Price: price, Quantity: 1},
		},
		ReturnURL: fmt.Sprintf("%s/payment-return?order_id=%s", s.clientURL, order.ID),
		CancelURL: s.clientURL + "/payment-cancel",
	})
	if err != nil {
		log.Printf("🔥 PayPal create failed for order %s: %v", order.ID, err)
		s.markFailed(ctx, &order)
		return nil, &Error{Kind: ErrUpstream, Message: msgCreateFailed, Detail: gatewayDetail(err)}
	}

	approveURL := created.ApprovalURL()
	if approveURL == "" {
		log.Printf("🔥 Missing approval URL in PayPal response for order %s", order.ID)
		s.markFailed(ctx, &order)
		return nil, newError(ErrUpstream, msgNoApprovalURL)
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_id", created.ID).Error; err != nil {
		return nil, fmt.Errorf("store payment id of order %s: %w", order.ID, err)
	}

	return &CreatedOrder{ApproveURL: approveURL, OrderID: order.ID, PaymentID: created.ID}, nil
}

// CaptureOrder executes the approved payment and confirms the order. The
// confirmation and its purchase tasks are written in one transaction; the
// projections, event, email and status push that follow never fail the call.
func (s *OrderService) CaptureOrder(ctx context.Context, in CaptureInput) (*CapturedOrder, error) {
	if in.PaymentID == "" || in.PayerID == "" || in.OrderID == "" {
		return nil, newError(ErrInvalid, msgMissingPayment)
	}

	order, err := s.loadOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, newError(ErrMisconfigured, msgPayPalMissing)
	}
	if order.PaymentID != nil && *order.PaymentID != "" && *order.PaymentID != in.PaymentID {
		return nil, newError(ErrInvalid, msgPaymentMismatch)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.gateway.ExecutePayment(gwCtx, in.PaymentID, in.PayerID); err != nil {
		log.Printf("🔥 PayPal execution failed for order %s: %v", order.ID, err)
		if !order.IsPaid() {
			s.markFailed(ctx, order)
		}
		return nil, &Error{Kind: ErrUpstream, Message: msgExecuteFailed, Detail: gatewayDetail(err)}
	}

	paidAt := time.Now()
	var transitioned bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// only an order that is not paid yet is confirmed; replays leave it untouched
		res := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Where("order_status <> ? OR payment_status <> ?", models.OrderStatusConfirmed, models.PaymentStatusPaid).
			Updates(map[string]any{
				"order_status":   models.OrderStatusConfirmed,
				"payment_status": models.PaymentStatusPaid,
				"payment_id":     in.PaymentID,
				"payer_id":       in.PayerID,
				"paid_at":        paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		transitioned = res.RowsAffected > 0

		tasks := make([]models.PurchaseTask, 0, len(models.PurchaseTaskKinds))
		for _, kind := range models.PurchaseTaskKinds {
			tasks = append(tasks, models.PurchaseTask{OrderID: order.ID, Kind: kind, Status: models.TaskStatusPending})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}},
			DoNothing: true,
		}).Create(&tasks).Error
	})
	if err != nil {
		return nil, fmt.Errorf("confirm order %s: %w", order.ID, err)
	}

	if transitioned {
		order.OrderStatus = models.OrderStatusConfirmed
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaymentID = &in.PaymentID
		order.PayerID = &in.PayerID
		order.PaidAt = &paidAt
	}

	if err := s.projector.ApplyPending(ctx, order.ID); err != nil {
		log.Printf("⚠️ Purchase projections for order %s deferred to reconciliation: %v", order.ID, err)
	} else {
		log.Printf("✅ Purchase of course %s recorded for user %s", order.CourseID, order.UserID)
	}

	if transitioned {
		s.publishPurchase(ctx, order)
		s.sendConfirmation(order)
	}
	s.publishStatus(order)

	return &CapturedOrder{OrderID: order.ID, PaymentID: in.PaymentID, PayerID: in.PayerID}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, msgOrderNotFound)
		}
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	return &order, nil
}

func (s *OrderService) markFailed(ctx context.Context, order *models.Order) {
	err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
		"order_status":   models.OrderStatusFailed,
		"payment_status": models.PaymentStatusFailed,
	}).Error
	if err != nil {
		log.Printf("🔥 Failed to mark order %s as failed: %v", order.ID, err)
		return
	}
	order.OrderStatus = models.OrderStatusFailed
	order.PaymentStatus = models.PaymentStatusFailed
	s.publishStatus(order)
}

func (s *OrderService) publishStatus(order *models.Order) {
	if s.status != nil {
		s.status.Publish(order.ID, order.OrderStatus, order.PaymentStatus)
	}
}

func (s *OrderService) publishPurchase(ctx context.Context, order *models.Order) {
	err := s.events.PublishPurchaseCompleted(ctx, events.PurchaseCompleted{
		Type:        events.TypePurchaseCompleted,
		OrderID:     order.ID,
		UserID:      order.UserID,
		UserEmail:   order.UserEmail,
		CourseID:    order.CourseID,
		CourseTitle: order.CourseTitle,
		Amount:      order.CoursePricing,
		PaymentID:   cast.ToString(order.PaymentID),
		PayerID:     cast.ToString(order.PayerID),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Printf("⚠️ Failed to publish purchase event for order %s: %v", order.ID, err)
	}
}

func (s *OrderService) sendConfirmation(order *models.Order) {
	if s.mailer == nil {
		return
	}
	snapshot := *order
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mailer.SendPurchaseConfirmation(ctx, &snapshot); err != nil {
			log.Printf("🔥 Failed to send purchase confirmation for order %s: %v", snapshot.ID, err)
		}
	})
}

func gatewayDetail(err error) any {
	var gwErr *payments.GatewayError
	if errors.As(err, &gwErr) && gwErr.Detail != nil {
		return gwErr.Detail
	}
	return err.Error()
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// parsePrice accepts a JSON string or number and requires a positive amount.
func parsePrice(v interface{}) (decimal.Decimal, error) {
	raw, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be positive, got %s", price)
	}
	return price, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
