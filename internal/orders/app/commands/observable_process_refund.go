package commands

import (
	"context"
	"log/slog"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/metrics"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableProcessRefundHandler struct {
	handler ProcessRefundHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableProcessRefundHandler(handler ProcessRefundHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableProcessRefundHandler {
	return &ObservableProcessRefundHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableProcessRefundHandler) Handle(ctx context.Context, cmd ProcessRefundCommand) (*domain.Refund, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProcessRefundCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", cmd.OrderID),
	)

	refund, err := o.handler.Handle(ctx, cmd)
	o.metrics.RecordRefundIssued(ctx, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to process refund",
			"error", err,
			"order_id", cmd.OrderID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("refund.id", refund.RefundID),
		attribute.String("refund.amount", refund.Amount.String()),
	)

	o.logger.InfoContext(ctx, "refund processed",
		"order_id", cmd.OrderID,
		"refund_id", refund.RefundID,
		"amount", refund.Amount.String(),
	)

	telemetry.SetSpanSuccess(span)

	return refund, nil
}
