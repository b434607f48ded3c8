package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// RefundStatus tracks money-return progress separately from the order
// status itself, so a cancelled order can carry a still-pending refund.
type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundCompleted RefundStatus = "completed"
)

// PaymentMethod enumerates how the customer intends to pay.
type PaymentMethod string

const (
	MethodCard           PaymentMethod = "card"
	MethodOtherCard      PaymentMethod = "other_card"
	MethodWalletTransfer PaymentMethod = "wallet_transfer"
	MethodCashOnDelivery PaymentMethod = "cod"
	MethodRazorpay       PaymentMethod = "razorpay"
)

// OrderItem is a point-in-time snapshot of a purchased product. Price is
// frozen at order time and never re-read from the catalog.
type OrderItem struct {
	ProductID string          `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Address is a shipping destination snapshot, not a live reference.
type Address struct {
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

// PaymentResult records the gateway's view of the payment for this order.
type PaymentResult struct {
	PaymentID      string    `json:"payment_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Refund exists only once a refund has been initiated for the order.
type Refund struct {
	RefundID    string          `json:"refund_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      RefundStatus    `json:"status"`
	RequestedBy string          `json:"requested_by"`
	Reason      string          `json:"reason,omitempty"`
	RefundedAt  *time.Time      `json:"refunded_at,omitempty"`
}

// Shipment holds the shipping provider correlation ids. A nil shipment
// means the order has not been handed off yet, which is not an error.
type Shipment struct {
	ProviderOrderID string `json:"provider_order_id"`
	ShipmentID      string `json:"shipment_id"`
	Courier         string `json:"courier,omitempty"`
	TrackingID      string `json:"tracking_id,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Order represents a purchase managed by the system. It is the single
// source of truth for payment and fulfilment state.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`

	Items           []OrderItem   `json:"items"`
	ShippingAddress Address       `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`

	ItemsPrice     decimal.Decimal `json:"items_price"`
	TaxPrice       decimal.Decimal `json:"tax_price"`
	ShippingPrice  decimal.Decimal `json:"shipping_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`

	IsPaid         bool           `json:"is_paid"`
	PaidAt         *time.Time     `json:"paid_at,omitempty"`
	PaymentResult  *PaymentResult `json:"payment_result,omitempty"`
	GatewayOrderID string         `json:"gateway_order_id,omitempty"`

	Status      OrderStatus `json:"status"`
	ShippedAt   *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time  `json:"delivered_at,omitempty"`
	CancelledAt *time.Time  `json:"cancelled_at,omitempty"`

	Refund   *Refund   `json:"refund,omitempty"`
	Shipment *Shipment `json:"shipment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return errors.New("user_id is required")
	}
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("item %d: name is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("item %d: price must not be negative", i)
		}
	}
	if strings.TrimSpace(o.ShippingAddress.Line1) == "" {
		return errors.New("shipping address line1 is required")
	}
	if strings.TrimSpace(o.ShippingAddress.Postcode) == "" {
		return errors.New("shipping address postcode is required")
	}
	if o.TotalPrice.IsNegative() {
		return errors.New("total_price must not be negative")
	}
	if !o.TotalsBalance() {
		return errors.New("total_price does not equal items + tax + shipping - discount")
	}
	return nil
}

// TotalsBalance reports whether the money breakdown adds up.
func (o Order) TotalsBalance() bool {
	sum := o.ItemsPrice.Add(o.TaxPrice).Add(o.ShippingPrice).Sub(o.DiscountAmount)
	return sum.Equal(o.TotalPrice)
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// PaidWith reports whether this exact gateway payment has already been
// applied, which makes a repeated confirmation a safe no-op.
func (o Order) PaidWith(paymentID string) bool {
	return o.IsPaid && o.PaymentResult != nil && o.PaymentResult.PaymentID == paymentID
}

// RefundCompleted reports whether the order's money has been returned.
func (o Order) RefundCompleted() bool {
	return o.Refund != nil && o.Refund.Status == RefundCompleted
}

// CanTransitionTo checks whether a lifecycle move is legal from the
// order's current state.
func (o Order) CanTransitionTo(target OrderStatus) error {
	switch target {
	case StatusProcessing:
		if o.Status != StatusPending {
			return fmt.Errorf("cannot move order in status %s to processing", o.Status)
		}
	case StatusShipped:
		if o.Status != StatusPending && o.Status != StatusProcessing {
			return fmt.Errorf("cannot ship order in status %s", o.Status)
		}
	case StatusDelivered:
		if o.Status == StatusCancelled || o.Status == StatusRefunded {
			return fmt.Errorf("cannot deliver order in status %s", o.Status)
		}
		if o.Status == StatusDelivered {
			return errors.New("order is already delivered")
		}
		if !o.IsPaid && o.PaymentMethod != MethodCashOnDelivery {
			return errors.New("cannot deliver an unpaid order")
		}
	case StatusCancelled:
		if o.Status == StatusDelivered {
			return errors.New("cannot cancel a delivered order")
		}
		if o.Status == StatusCancelled || o.Status == StatusRefunded {
			return errors.New("order is already cancelled")
		}
	default:
		return fmt.Errorf("unknown target status %q", target)
	}
	return nil
}

// ValidStatus reports whether the value is a known lifecycle status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether the value is a known method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCard, MethodOtherCard, MethodWalletTransfer, MethodCashOnDelivery, MethodRazorpay:
		return true
	}
	return false
}
