package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

// Notifier tells the external notification dispatcher about order
// events. Delivery mechanics are out of scope; failures are logged by
// callers and never abort the primary operation.
type Notifier interface {
	OrderPlaced(ctx context.Context, userID, orderNumber string) error
	PaymentConfirmed(ctx context.Context, userID, orderNumber string) error
	StatusChanged(ctx context.Context, userID, orderNumber string, status domain.OrderStatus) error
	RefundIssued(ctx context.Context, userID, orderNumber string, amount decimal.Decimal) error
}
