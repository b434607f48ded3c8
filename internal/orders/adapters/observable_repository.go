package adapters

import (
	"context"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/database"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.String("operation", "create"),
	)

	start := time.Now()
	err := r.repo.Create(ctx, order)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "create_order", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, "OrderRepository.GetByID", "get_order_by_id", id, r.repo.GetByID)
}

func (r *ObservableRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	return r.getOne(ctx, "OrderRepository.GetByGatewayOrderID", "get_order_by_gateway_order_id", gatewayOrderID, r.repo.GetByGatewayOrderID)
}

func (r *ObservableRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	return r.getOne(ctx, "OrderRepository.GetByPaymentID", "get_order_by_payment_id", paymentID, r.repo.GetByPaymentID)
}

func (r *ObservableRepository) getOne(ctx context.Context, spanName, queryName, key string, lookup func(context.Context, string) (*domain.Order, error)) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("lookup.key", key),
		attribute.String("operation", queryName),
	)

	start := time.Now()
	order, err := lookup(ctx, key)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, queryName, duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("operation", "list"),
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	orders, err := r.repo.List(ctx, filter)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_orders", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) NextOrderSequence(ctx context.Context, day time.Time) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.NextOrderSequence")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("counter.day", day.UTC().Format("20060102")),
		attribute.String("operation", "next_order_sequence"),
	)

	start := time.Now()
	seq, err := r.repo.NextOrderSequence(ctx, day)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "next_order_sequence", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return 0, err
	}

	telemetry.SetSpanSuccess(span)
	return seq, nil
}

func (r *ObservableRepository) BindPaymentIntent(ctx context.Context, orderID, gatewayOrderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.BindPaymentIntent")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("gateway.order_id", gatewayOrderID),
		attribute.String("operation", "bind_payment_intent"),
	)

	start := time.Now()
	err := r.repo.BindPaymentIntent(ctx, orderID, gatewayOrderID)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "bind_payment_intent", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.MarkPaid")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("payment.id", result.PaymentID),
		attribute.String("operation", "mark_paid"),
	)

	start := time.Now()
	err := r.repo.MarkPaid(ctx, orderID, result, paidAt)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "mark_order_paid", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) RecordPaymentFailure(ctx context.Context, orderID string, result domain.PaymentResult) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.RecordPaymentFailure")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("payment.id", result.PaymentID),
		attribute.String("operation", "record_payment_failure"),
	)

	start := time.Now()
	err := r.repo.RecordPaymentFailure(ctx, orderID, result)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "record_payment_failure", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("order.new_status", string(status)),
		attribute.String("operation", "update_status"),
	)

	start := time.Now()
	err := r.repo.UpdateStatus(ctx, id, status)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "update_order_status", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) SetRefund(ctx context.Context, id string, refund domain.Refund) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SetRefund")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("refund.status", string(refund.Status)),
		attribute.String("operation", "set_refund"),
	)

	start := time.Now()
	err := r.repo.SetRefund(ctx, id, refund)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "set_refund", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) SetShipment(ctx context.Context, id string, shipment domain.Shipment) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SetShipment")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("shipment.id", shipment.ShipmentID),
		attribute.String("operation", "set_shipment"),
	)

	start := time.Now()
	err := r.repo.SetShipment(ctx, id, shipment)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "set_shipment", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) ListOpenShipments(ctx context.Context) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListOpenShipments")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "list_open_shipments"),
	)

	start := time.Now()
	orders, err := r.repo.ListOpenShipments(ctx)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_open_shipments", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}
