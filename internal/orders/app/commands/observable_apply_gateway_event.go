package commands

import (
	"context"
	"log/slog"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/metrics"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableApplyGatewayEventHandler struct {
	handler ApplyGatewayEventHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableApplyGatewayEventHandler(handler ApplyGatewayEventHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableApplyGatewayEventHandler {
	return &ObservableApplyGatewayEventHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableApplyGatewayEventHandler) Handle(ctx context.Context, event GatewayEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "ApplyGatewayEventCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("gateway.event", event.Event),
	)

	err := o.handler.Handle(ctx, event)
	o.metrics.RecordWebhookEvent(ctx, event.Event, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to apply gateway event",
			"error", err,
			"event", event.Event,
		)
		return err
	}

	o.logger.InfoContext(ctx, "gateway event applied",
		"event", event.Event,
	)

	telemetry.SetSpanSuccess(span)

	return nil
}
