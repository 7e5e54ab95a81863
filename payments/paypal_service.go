package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/plutov/paypal/v4"
)

const (
	opCreate  = "paypal.create"
	opExecute = "paypal.execute"

	completedStatus = "COMPLETED"
	captureIntent   = "CAPTURE"
)

type PayPalGateway struct {
	client *paypal.Client
}

// NewPayPalGateway builds a PayPal client for the configured mode. apiBase
// overrides the mode when non-empty.
func NewPayPalGateway(cfg config.PayPalConfig, apiBase string) (*PayPalGateway, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	if apiBase == "" {
		apiBase = paypal.APIBaseSandBox
		if cfg.Mode == "live" {
			apiBase = paypal.APIBaseLive
		}
	}

	client, err := paypal.NewClient(cfg.ClientID, cfg.Secret, apiBase)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ PayPal gateway initialized (%s mode)", cfg.Mode)
	return &PayPalGateway{client: client}, nil
}

func (g *PayPalGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*CreatedPayment, error) {
	currency := strings.ToUpper(req.Currency)
	items := make([]paypal.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, paypal.Item{
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: strconv.Itoa(item.Quantity),
			UnitAmount: &paypal.Money{
				Currency: currency,
				Value:    item.Price.StringFixed(2),
			},
		})
	}

	total := req.Total.StringFixed(2)
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: req.ReferenceID,
			Description: req.Description,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    total,
				Breakdown: &paypal.PurchaseUnitAmountBreakdown{
					ItemTotal: &paypal.Money{Currency: currency, Value: total},
				},
			},
			Items: items,
		},
	}

	appContext := &paypal.ApplicationContext{
		ReturnURL:  req.ReturnURL,
		CancelURL:  req.CancelURL,
		UserAction: "PAY_NOW",
	}

	order, err := g.client.CreateOrder(ctx, captureIntent, units, nil, appContext)
	if err != nil {
		return nil, wrapPayPalError(opCreate, "failed to create PayPal order", err)
	}

	created := &CreatedPayment{ID: order.ID, Status: order.Status}
	for _, link := range order.Links {
		created.Links = append(created.Links, Link{Href: link.Href, Rel: link.Rel, Method: link.Method})
	}
	return created, nil
}

// ExecutePayment captures the approved PayPal order identified by paymentID.
func (g *PayPalGateway) ExecutePayment(ctx context.Context, paymentID, payerID string) (*ExecutedPayment, error) {
	capture, err := g.client.CaptureOrder(ctx, paymentID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, wrapPayPalError(opExecute, "failed to capture PayPal order", err)
	}

	if capture.Status != completedStatus {
		return nil, &GatewayError{
			Op:      opExecute,
			Message: fmt.Sprintf("capture not completed, status: %s", capture.Status),
			Detail:  map[string]string{"status": capture.Status},
		}
	}

	return &ExecutedPayment{ID: capture.ID, Status: capture.Status, PayerID: payerID}, nil
}

func wrapPayPalError(op, message string, err error) error {
	gwErr := &GatewayError{Op: op, Message: message, Err: err}

	var apiErr *paypal.ErrorResponse
	if errors.As(err, &apiErr) {
		gwErr.Detail = map[string]any{
			"name":     apiErr.Name,
			"message":  apiErr.Message,
			"debug_id": apiErr.DebugID,
			"details":  apiErr.Details,
		}
	} else {
		gwErr.Detail = err.Error()
	}
	return gwErr
}
