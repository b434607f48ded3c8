package notify

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

// NoopNotifier logs notifications without dispatching them anywhere.
// Useful for local dev before wiring a real notification channel.
type NoopNotifier struct{}

// NewNoopNotifier returns a new no-op notification dispatcher.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) OrderPlaced(_ context.Context, userID, orderNumber string) error {
	slog.Debug("notify::order_placed", "user_id", userID, "order_number", orderNumber)
	return nil
}

func (n *NoopNotifier) PaymentConfirmed(_ context.Context, userID, orderNumber string) error {
	slog.Debug("notify::payment_confirmed", "user_id", userID, "order_number", orderNumber)
	return nil
}

func (n *NoopNotifier) StatusChanged(_ context.Context, userID, orderNumber string, status domain.OrderStatus) error {
	slog.Debug("notify::status_changed", "user_id", userID, "order_number", orderNumber, "status", string(status))
	return nil
}

func (n *NoopNotifier) RefundIssued(_ context.Context, userID, orderNumber string, amount decimal.Decimal) error {
	slog.Debug("notify::refund_issued", "user_id", userID, "order_number", orderNumber, "amount", amount.String())
	return nil
}
