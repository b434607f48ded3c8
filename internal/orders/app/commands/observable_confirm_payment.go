package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/metrics"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableConfirmPaymentHandler struct {
	handler ConfirmPaymentHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableConfirmPaymentHandler(handler ConfirmPaymentHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableConfirmPaymentHandler {
	return &ObservableConfirmPaymentHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "ConfirmPaymentCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordPaymentConfirmationDuration(ctx, duration)
		o.metrics.RecordPaymentConfirmed(ctx, success)
	}()

	telemetry.AddSpanAttributes(span,
		attribute.String("payment.id", cmd.PaymentID),
		attribute.Bool("payment.trusted_capture", cmd.TrustCapture),
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to confirm payment",
			"error", err,
			"payment_id", cmd.PaymentID,
			"gateway_order_id", cmd.GatewayOrderID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "payment confirmed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"payment_id", cmd.PaymentID,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
