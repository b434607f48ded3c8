package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal       metric.Int64Counter
	orderPlacementDuration  metric.Float64Histogram
	paymentsConfirmedTotal  metric.Int64Counter
	paymentConfirmDuration  metric.Float64Histogram
	webhookEventsTotal      metric.Int64Counter
	refundsIssuedTotal      metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementDuration, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.paymentsConfirmedTotal, err = meter.Int64Counter(
		"payments_confirmed_total",
		metric.WithDescription("Total number of payment confirmations applied"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments_confirmed_total counter: %w", err)
	}

	m.paymentConfirmDuration, err = meter.Float64Histogram(
		"payment_confirmation_duration_seconds",
		metric.WithDescription("Duration of payment confirmation operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_confirmation_duration histogram: %w", err)
	}

	m.webhookEventsTotal, err = meter.Int64Counter(
		"gateway_webhook_events_total",
		metric.WithDescription("Total gateway webhook events received"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create gateway_webhook_events_total counter: %w", err)
	}

	m.refundsIssuedTotal, err = meter.Int64Counter(
		"refunds_issued_total",
		metric.WithDescription("Total refunds issued through the gateway"),
		metric.WithUnit("{refund}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create refunds_issued_total counter: %w", err)
	}

	return m, nil
}

func statusAttr(success bool) attribute.KeyValue {
	status := "success"
	if !success {
		status = "error"
	}
	return attribute.String("status", status)
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(statusAttr(success)))
}

func (m *Metrics) RecordOrderPlacementDuration(ctx context.Context, durationSeconds float64) {
	m.orderPlacementDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordPaymentConfirmed(ctx context.Context, success bool) {
	m.paymentsConfirmedTotal.Add(ctx, 1, metric.WithAttributes(statusAttr(success)))
}

func (m *Metrics) RecordPaymentConfirmationDuration(ctx context.Context, durationSeconds float64) {
	m.paymentConfirmDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordWebhookEvent(ctx context.Context, event string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "dropped"
	}
	m.webhookEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordRefundIssued(ctx context.Context, success bool) {
	m.refundsIssuedTotal.Add(ctx, 1, metric.WithAttributes(statusAttr(success)))
}
