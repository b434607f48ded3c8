package ports

import (
	"context"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the
// application layer. The payment and intent mutations are conditional
// updates, not read-then-write sequences: two concurrent writers on the
// same order must resolve to exactly one applied change.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)

	// NextOrderSequence atomically increments and returns the per-day
	// counter used for human-readable order numbers.
	NextOrderSequence(ctx context.Context, day time.Time) (int64, error)

	// BindPaymentIntent attaches a gateway order id to an unpaid order.
	// Returns ErrIntentExists when one is already bound and ErrAlreadyPaid
	// when the order has been paid in the meantime.
	BindPaymentIntent(ctx context.Context, orderID, gatewayOrderID string) error

	// MarkPaid records a captured payment and advances a pending order to
	// processing in a single conditional update guarded on is_paid=false.
	// Returns ErrAlreadyPaid when another writer won the race.
	MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error

	// RecordPaymentFailure stores the gateway's failure detail and cancels
	// the order without touching is_paid. Applying it to an order that is
	// already paid or terminal is a no-op.
	RecordPaymentFailure(ctx context.Context, orderID string, result domain.PaymentResult) error

	// UpdateStatus moves the order's lifecycle status, stamping the
	// matching timestamp. Terminal orders are never overwritten; doing so
	// returns ErrInvalidState.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error

	// SetRefund writes the refund sub-record. Completing a refund is
	// conditional on the refund not already being completed.
	SetRefund(ctx context.Context, id string, refund domain.Refund) error

	// SetShipment stores the shipping provider correlation ids and the
	// last known courier status.
	SetShipment(ctx context.Context, id string, shipment domain.Shipment) error

	// ListOpenShipments returns orders that have been handed to the
	// shipping provider but are not yet delivered or cancelled.
	ListOpenShipments(ctx context.Context) ([]domain.Order, error)
}

// ListFilter narrows list queries by owner, status and pagination.
type ListFilter struct {
	UserID   string
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}
