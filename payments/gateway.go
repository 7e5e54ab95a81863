package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotConfigured is returned when no gateway credentials are available.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// Gateway creates redirect-based payments and executes them once the payer
// has approved them on the provider's page.
type Gateway interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*CreatedPayment, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string) (*ExecutedPayment, error)
}

type PaymentItem struct {
	Name     string
	SKU      string
	Price    decimal.Decimal
	Quantity int
}

type PaymentRequest struct {
	ReferenceID string
	Description string
	Currency    string
	Total       decimal.Decimal
	Items       []PaymentItem
	ReturnURL   string
	CancelURL   string
}

type Link struct {
	Href   string
	Rel    string
	Method string
}

type CreatedPayment struct {
	ID     string
	Status string
	Links  []Link
}

// ApprovalURL returns the link the payer must be redirected to, or "" when the
// provider did not send one.
func (p *CreatedPayment) ApprovalURL() string {
	if p == nil {
		return ""
	}
	for _, link := range p.Links {
		if (link.Rel == "approve" || link.Rel == "approval_url") && link.Href != "" {
			return link.Href
		}
	}
	return ""
}

type ExecutedPayment struct {
	ID      string
	Status  string
	PayerID string
}

// GatewayError is the failure side of every gateway call.
type GatewayError struct {
	Op      string
	Message string
	Detail  any
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
