package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/course_marketplace/database/databasetest"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/anjiri1684/course_marketplace/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db      *gorm.DB
	gateway *stubGateway
	events  *recordingEvents
	mailer  *recordingMailer
	status  *recordingStatus
	svc     *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	f := &orderFixture{
		db:      databasetest.New(t),
		gateway: &stubGateway{},
		events:  &recordingEvents{},
		mailer:  &recordingMailer{},
		status:  &recordingStatus{},
	}
	f.svc = NewOrderService(OrderDeps{
		DB:             f.db,
		Gateway:        f.gateway,
		Events:         f.events,
		Mailer:         f.mailer,
		Status:         f.status,
		ClientURL:      "http://client.test/",
		Currency:       "USD",
		GatewayTimeout: time.Second,
	})
	f.svc.background = func(fn func()) { fn() }
	return f
}

func (f *orderFixture) seedCourse(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Course{ID: id, InstructorID: "i1", Title: "Intro", Pricing: 49.9}).Error)
}

func (f *orderFixture) order(t *testing.T, id string) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", id).Error)
	return order
}

func validCreateInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:         "u1",
		UserName:       "Jane",
		UserEmail:      "jane@example.com",
		InstructorID:   "i1",
		InstructorName: "Ann",
		CourseImage:    "https://cdn/intro.png",
		CourseTitle:    "Intro",
		CourseID:       "c1",
		CoursePricing:  "49.9",
	}
}

func requireKind(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, message, svcErr.Message)
}

func TestCreateOrderPersistsPendingOrderBeforeGatewayCall(t *testing.T) {
	f := newOrderFixture(t)

	f.gateway.createFn = func(_ context.Context, req payments.PaymentRequest) (*payments.CreatedPayment, error) {
		var order models.Order
		require.NoError(t, f.db.First(&order, "id = ?", req.ReferenceID).Error)
		assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
		assert.Equal(t, models.PaymentStatusInitiated, order.PaymentStatus)
		assert.Nil(t, order.PaymentID)
		assert.Nil(t, order.PayerID)
		return &payments.CreatedPayment{ID: "PAY-1", Links: []payments.Link{{Rel: "approve", Href: "https://approve"}}}, nil
	}

	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, "https://approve", created.ApproveURL)
	assert.Equal(t, "PAY-1", created.PaymentID)

	order := f.order(t, created.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, "PAY-1", *order.PaymentID)
	assert.Equal(t, "49.90", order.CoursePricing)
	assert.Equal(t, models.PaymentMethodPayPal, order.PaymentMethod)

	req := f.gateway.lastCreate
	assert.Equal(t, "http://client.test/payment-return?order_id="+order.ID, req.ReturnURL)
	assert.Equal(t, "http://client.test/payment-cancel", req.CancelURL)
	assert.Equal(t, "Purchase of Intro", req.Description)
	assert.Equal(t, "49.9", req.Total.String())
	require.Len(t, req.Items, 1)
	assert.Equal(t, "c1", req.Items[0].SKU)
	assert.Equal(t, 1, req.Items[0].Quantity)
}

func TestCreateOrderAcceptsNumericPricingAndTruncatesItemName(t *testing.T) {
	f := newOrderFixture(t)
	in := validCreateInput()
	in.CoursePricing = 12.5
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'a'
	}
	in.CourseTitle = string(long)

	created, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "12.50", f.order(t, created.OrderID).CoursePricing)
	assert.Len(t, f.gateway.lastCreate.Items[0].Name, 127)
}

func TestCreateOrderGatewayFailureMarksOrderFailed(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.createFn = func(context.Context, payments.PaymentRequest) (*payments.CreatedPayment, error) {
		return nil, &payments.GatewayError{Op: "paypal.create", Message: "unreachable", Detail: "dial tcp: connection refused"}
	}

	_, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	requireKind(t, err, ErrUpstream, "Error while creating PayPal payment")

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "dial tcp: connection refused", svcErr.Detail)

	var orders []models.Order
	require.NoError(t, f.db.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusFailed, orders[0].OrderStatus)
	assert.Equal(t, models.PaymentStatusFailed, orders[0].PaymentStatus)

	last := f.status.changes[len(f.status.changes)-1]
	assert.Equal(t, statusChange{orders[0].ID, models.OrderStatusFailed, models.PaymentStatusFailed}, last)
}

func TestCreateOrderWithoutApprovalLinkMarksOrderFailed(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.createFn = func(context.Context, payments.PaymentRequest) (*payments.CreatedPayment, error) {
		return &payments.CreatedPayment{ID: "PAY-9", Links: []payments.Link{{Rel: "self", Href: "https://self"}}}, nil
	}

	_, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	requireKind(t, err, ErrUpstream, "PayPal response missing approval URL")

	var order models.Order
	require.NoError(t, f.db.First(&order).Error)
	assert.Equal(t, models.OrderStatusFailed, order.OrderStatus)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)
	assert.Nil(t, order.PaymentID)
}

func TestCreateOrderValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*CreateOrderInput)
		message string
	}{
		{"missing user", func(in *CreateOrderInput) { in.UserID = "" }, "Missing required fields for payment creation"},
		{"missing course", func(in *CreateOrderInput) { in.CourseID = "" }, "Missing required fields for payment creation"},
		{"missing title", func(in *CreateOrderInput) { in.CourseTitle = "" }, "Missing required fields for payment creation"},
		{"missing pricing", func(in *CreateOrderInput) { in.CoursePricing = nil }, "Missing required fields for payment creation"},
		{"non numeric pricing", func(in *CreateOrderInput) { in.CoursePricing = "free" }, "Invalid course pricing value"},
		{"zero pricing", func(in *CreateOrderInput) { in.CoursePricing = "0" }, "Invalid course pricing value"},
		{"negative pricing", func(in *CreateOrderInput) { in.CoursePricing = -3.0 }, "Invalid course pricing value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture(t)
			in := validCreateInput()
			tc.mutate(&in)

			_, err := f.svc.CreateOrder(context.Background(), in)
			requireKind(t, err, ErrInvalid, tc.message)

			var count int64
			require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
			assert.Zero(t, count)
			assert.Zero(t, f.gateway.createCalls)
		})
	}
}

func TestCreateOrderRequiresConfiguration(t *testing.T) {
	db := databasetest.New(t)

	noGateway := NewOrderService(OrderDeps{DB: db, ClientURL: "http://client.test"})
	_, err := noGateway.CreateOrder(context.Background(), validCreateInput())
	requireKind(t, err, ErrMisconfigured, msgPayPalMissing)

	noClient := NewOrderService(OrderDeps{DB: db, Gateway: &stubGateway{}})
	_, err = noClient.CreateOrder(context.Background(), validCreateInput())
	requireKind(t, err, ErrMisconfigured, msgClientURLMissing)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCaptureUnknownOrderSkipsGateway(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: "missing"})
	requireKind(t, err, ErrNotFound, "Order cannot be found")
	assert.Zero(t, f.gateway.executeCalls)
}

func TestCaptureRequiresAllIdentifiers(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", OrderID: "o"})
	requireKind(t, err, ErrInvalid, "Missing required payment information")
	assert.Zero(t, f.gateway.executeCalls)
}

func TestCaptureConfirmsOrderAndProjectsPurchaseOnce(t *testing.T) {
	f := newOrderFixture(t)
	f.seedCourse(t, "c1")

	history := models.StudentCourses{UserID: "u1", Courses: []models.StudentCourseItem{
		{OrderID: "earlier-order", CourseID: "c0", Title: "Earlier", DateOfPurchase: time.Now().Add(-time.Hour)},
	}}
	require.NoError(t, f.db.Create(&history).Error)

	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)

	captured, err := f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID})
	require.NoError(t, err)
	assert.Equal(t, CapturedOrder{OrderID: created.OrderID, PaymentID: "PAY-1", PayerID: "PAYER-1"}, *captured)

	order := f.order(t, created.OrderID)
	assert.Equal(t, models.OrderStatusConfirmed, order.OrderStatus)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "PAYER-1", *order.PayerID)

	var items []models.StudentCourseItem
	require.NoError(t, f.db.Where("student_courses_id = ?", history.ID).Order("date_of_purchase asc").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "c0", items[0].CourseID)
	assert.Equal(t, "c1", items[1].CourseID)
	assert.Equal(t, order.ID, items[1].OrderID)

	var roster []models.CourseStudent
	require.NoError(t, f.db.Where("course_id = ?", "c1").Find(&roster).Error)
	require.Len(t, roster, 1)
	assert.Equal(t, "u1", roster[0].StudentID)
	assert.Equal(t, "49.90", roster[0].PaidAmount)

	var tasks []models.PurchaseTask
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&tasks).Error)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, models.TaskStatusDone, task.Status)
		assert.NotNil(t, task.AppliedAt)
	}

	require.Len(t, f.events.published, 1)
	assert.Equal(t, order.ID, f.events.published[0].OrderID)
	assert.Equal(t, "PAY-1", f.events.published[0].PaymentID)
	require.Len(t, f.mailer.orders, 1)
	assert.Equal(t, "jane@example.com", f.mailer.orders[0].UserEmail)

	last := f.status.changes[len(f.status.changes)-1]
	assert.Equal(t, statusChange{order.ID, models.OrderStatusConfirmed, models.PaymentStatusPaid}, last)
}

func TestCaptureReplayReinvokesGatewayWithoutDuplicatingProjections(t *testing.T) {
	f := newOrderFixture(t)
	f.seedCourse(t, "c1")

	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)
	in := CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID}

	_, err = f.svc.CaptureOrder(context.Background(), in)
	require.NoError(t, err)
	_, err = f.svc.CaptureOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 2, f.gateway.executeCalls)

	var items, roster, tasks int64
	require.NoError(t, f.db.Model(&models.StudentCourseItem{}).Where("order_id = ?", created.OrderID).Count(&items).Error)
	require.NoError(t, f.db.Model(&models.CourseStudent{}).Where("course_id = ? AND student_id = ?", "c1", "u1").Count(&roster).Error)
	require.NoError(t, f.db.Model(&models.PurchaseTask{}).Where("order_id = ?", created.OrderID).Count(&tasks).Error)
	assert.EqualValues(t, 1, items)
	assert.EqualValues(t, 1, roster)
	assert.EqualValues(t, 2, tasks)

	assert.Len(t, f.events.published, 1)
	assert.Len(t, f.mailer.orders, 1)
}

func TestCaptureReplayKeepsFirstConfirmation(t *testing.T) {
	f := newOrderFixture(t)
	f.seedCourse(t, "c1")

	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)
	in := CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID}

	_, err = f.svc.CaptureOrder(context.Background(), in)
	require.NoError(t, err)
	first := f.order(t, created.OrderID)
	require.NotNil(t, first.PaidAt)

	in.PayerID = "PAYER-2"
	_, err = f.svc.CaptureOrder(context.Background(), in)
	require.NoError(t, err)

	again := f.order(t, created.OrderID)
	assert.Equal(t, "PAYER-1", *again.PayerID)
	assert.True(t, first.PaidAt.Equal(*again.PaidAt))

	var item models.StudentCourseItem
	require.NoError(t, f.db.First(&item, "order_id = ?", created.OrderID).Error)
	assert.True(t, item.DateOfPurchase.Equal(*first.PaidAt))
}

func TestCaptureLooksUpOrderBeforeCheckingConfiguration(t *testing.T) {
	f := newOrderFixture(t)
	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)
	f.svc.gateway = nil

	_, err = f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: "missing"})
	requireKind(t, err, ErrNotFound, "Order cannot be found")

	_, err = f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID})
	requireKind(t, err, ErrMisconfigured, msgPayPalMissing)
}

func TestCaptureGatewayFailureMarksOrderFailed(t *testing.T) {
	f := newOrderFixture(t)
	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)

	f.gateway.executeErr = &payments.GatewayError{Op: "paypal.execute", Message: "declined", Detail: map[string]any{"name": "INSTRUMENT_DECLINED"}}
	_, err = f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID})
	requireKind(t, err, ErrUpstream, "Error executing PayPal payment")

	order := f.order(t, created.OrderID)
	assert.Equal(t, models.OrderStatusFailed, order.OrderStatus)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)

	var tasks int64
	require.NoError(t, f.db.Model(&models.PurchaseTask{}).Count(&tasks).Error)
	assert.Zero(t, tasks)
	assert.Empty(t, f.events.published)
}

func TestCaptureFailureNeverDowngradesPaidOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.seedCourse(t, "c1")
	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)
	in := CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID}
	_, err = f.svc.CaptureOrder(context.Background(), in)
	require.NoError(t, err)

	f.gateway.executeErr = errors.New("ORDER_ALREADY_CAPTURED")
	_, err = f.svc.CaptureOrder(context.Background(), in)
	requireKind(t, err, ErrUpstream, "Error executing PayPal payment")

	order := f.order(t, created.OrderID)
	assert.True(t, order.IsPaid())
}

func TestCaptureRejectsForeignPayment(t *testing.T) {
	f := newOrderFixture(t)
	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-OTHER", PayerID: "PAYER-1", OrderID: created.OrderID})
	requireKind(t, err, ErrInvalid, "Payment does not belong to this order")
	assert.Zero(t, f.gateway.executeCalls)
	assert.Equal(t, models.OrderStatusPending, f.order(t, created.OrderID).OrderStatus)
}

func TestCaptureWithMissingCourseDefersRosterTask(t *testing.T) {
	f := newOrderFixture(t)
	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = f.svc.CaptureOrder(context.Background(), CaptureInput{PaymentID: "PAY-1", PayerID: "PAYER-1", OrderID: created.OrderID})
	require.NoError(t, err)

	var roster models.PurchaseTask
	require.NoError(t, f.db.First(&roster, "order_id = ? AND kind = ?", created.OrderID, models.TaskKindCourseRoster).Error)
	assert.Equal(t, models.TaskStatusPending, roster.Status)
	assert.Equal(t, 1, roster.Attempts)
	require.NotNil(t, roster.LastError)
	assert.Contains(t, *roster.LastError, "course c1 not found")

	var history models.PurchaseTask
	require.NoError(t, f.db.First(&history, "order_id = ? AND kind = ?", created.OrderID, models.TaskKindStudentCourses).Error)
	assert.Equal(t, models.TaskStatusDone, history.Status)

	f.seedCourse(t, "c1")
	result, err := NewProjector(f.db).Reconcile(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Scanned: 1, Applied: 1}, result)

	var members int64
	require.NoError(t, f.db.Model(&models.CourseStudent{}).Where("course_id = ?", "c1").Count(&members).Error)
	assert.EqualValues(t, 1, members)
}

func TestGetOrder(t *testing.T) {
	f := newOrderFixture(t)
	created, err := f.svc.CreateOrder(context.Background(), validCreateInput())
	require.NoError(t, err)

	order, err := f.svc.GetOrder(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", order.CourseTitle)

	_, err = f.svc.GetOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
