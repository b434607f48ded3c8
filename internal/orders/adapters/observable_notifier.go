package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/notify"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableNotifier struct {
	notifier ports.Notifier
	metrics  *notify.Metrics
}

func NewObservableNotifier(notifier ports.Notifier, metrics *notify.Metrics) *ObservableNotifier {
	return &ObservableNotifier{
		notifier: notifier,
		metrics:  metrics,
	}
}

func (n *ObservableNotifier) OrderPlaced(ctx context.Context, userID, orderNumber string) error {
	ctx, span := telemetry.StartSpan(ctx, "Notifier.OrderPlaced")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.number", orderNumber),
		attribute.String("notification.kind", "order_placed"),
	)

	start := time.Now()
	err := n.notifier.OrderPlaced(ctx, userID, orderNumber)
	duration := time.Since(start).Seconds()

	n.metrics.RecordDispatch(ctx, "order_placed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (n *ObservableNotifier) PaymentConfirmed(ctx context.Context, userID, orderNumber string) error {
	ctx, span := telemetry.StartSpan(ctx, "Notifier.PaymentConfirmed")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.number", orderNumber),
		attribute.String("notification.kind", "payment_confirmed"),
	)

	start := time.Now()
	err := n.notifier.PaymentConfirmed(ctx, userID, orderNumber)
	duration := time.Since(start).Seconds()

	n.metrics.RecordDispatch(ctx, "payment_confirmed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (n *ObservableNotifier) StatusChanged(ctx context.Context, userID, orderNumber string, status domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "Notifier.StatusChanged")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.number", orderNumber),
		attribute.String("order.status", string(status)),
		attribute.String("notification.kind", "status_changed"),
	)

	start := time.Now()
	err := n.notifier.StatusChanged(ctx, userID, orderNumber, status)
	duration := time.Since(start).Seconds()

	n.metrics.RecordDispatch(ctx, "status_changed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (n *ObservableNotifier) RefundIssued(ctx context.Context, userID, orderNumber string, amount decimal.Decimal) error {
	ctx, span := telemetry.StartSpan(ctx, "Notifier.RefundIssued")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.number", orderNumber),
		attribute.String("refund.amount", amount.String()),
		attribute.String("notification.kind", "refund_issued"),
	)

	start := time.Now()
	err := n.notifier.RefundIssued(ctx, userID, orderNumber, amount)
	duration := time.Since(start).Seconds()

	n.metrics.RecordDispatch(ctx, "refund_issued", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
