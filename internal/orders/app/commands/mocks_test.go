package commands_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRepository struct {
	createFn               func(ctx context.Context, order domain.Order) error
	getByIDFn              func(ctx context.Context, id string) (*domain.Order, error)
	getByGatewayOrderIDFn  func(ctx context.Context, gatewayOrderID string) (*domain.Order, error)
	getByPaymentIDFn       func(ctx context.Context, paymentID string) (*domain.Order, error)
	listFn                 func(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error)
	nextOrderSequenceFn    func(ctx context.Context, day time.Time) (int64, error)
	bindPaymentIntentFn    func(ctx context.Context, orderID, gatewayOrderID string) error
	markPaidFn             func(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error
	recordPaymentFailureFn func(ctx context.Context, orderID string, result domain.PaymentResult) error
	updateStatusFn         func(ctx context.Context, id string, status domain.OrderStatus) error
	setRefundFn            func(ctx context.Context, id string, refund domain.Refund) error
	setShipmentFn          func(ctx context.Context, id string, shipment domain.Shipment) error
	listOpenShipmentsFn    func(ctx context.Context) ([]domain.Order, error)
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	if m.getByGatewayOrderIDFn != nil {
		return m.getByGatewayOrderIDFn(ctx, gatewayOrderID)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	if m.getByPaymentIDFn != nil {
		return m.getByPaymentIDFn(ctx, paymentID)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockRepository) NextOrderSequence(ctx context.Context, day time.Time) (int64, error) {
	if m.nextOrderSequenceFn != nil {
		return m.nextOrderSequenceFn(ctx, day)
	}
	return 1, nil
}

func (m *mockRepository) BindPaymentIntent(ctx context.Context, orderID, gatewayOrderID string) error {
	if m.bindPaymentIntentFn != nil {
		return m.bindPaymentIntentFn(ctx, orderID, gatewayOrderID)
	}
	return nil
}

func (m *mockRepository) MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, orderID, result, paidAt)
	}
	return nil
}

func (m *mockRepository) RecordPaymentFailure(ctx context.Context, orderID string, result domain.PaymentResult) error {
	if m.recordPaymentFailureFn != nil {
		return m.recordPaymentFailureFn(ctx, orderID, result)
	}
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockRepository) SetRefund(ctx context.Context, id string, refund domain.Refund) error {
	if m.setRefundFn != nil {
		return m.setRefundFn(ctx, id, refund)
	}
	return nil
}

func (m *mockRepository) SetShipment(ctx context.Context, id string, shipment domain.Shipment) error {
	if m.setShipmentFn != nil {
		return m.setShipmentFn(ctx, id, shipment)
	}
	return nil
}

func (m *mockRepository) ListOpenShipments(ctx context.Context) ([]domain.Order, error) {
	if m.listOpenShipmentsFn != nil {
		return m.listOpenShipmentsFn(ctx)
	}
	return nil, nil
}

type mockGateway struct {
	createIntentFn func(ctx context.Context, receipt string, amountMinor int64, currency string) (*ports.PaymentIntent, error)
	fetchPaymentFn func(ctx context.Context, paymentID string) (*ports.GatewayPayment, error)
	createRefundFn func(ctx context.Context, paymentID string, amountMinor int64) (*ports.GatewayRefund, error)
}

func (m *mockGateway) CreateIntent(ctx context.Context, receipt string, amountMinor int64, currency string) (*ports.PaymentIntent, error) {
	if m.createIntentFn != nil {
		return m.createIntentFn(ctx, receipt, amountMinor, currency)
	}
	return &ports.PaymentIntent{ID: "order_gw_1", AmountMinor: amountMinor, Currency: currency}, nil
}

func (m *mockGateway) FetchPayment(ctx context.Context, paymentID string) (*ports.GatewayPayment, error) {
	if m.fetchPaymentFn != nil {
		return m.fetchPaymentFn(ctx, paymentID)
	}
	return &ports.GatewayPayment{ID: paymentID, Status: ports.PaymentStatusCaptured}, nil
}

func (m *mockGateway) CreateRefund(ctx context.Context, paymentID string, amountMinor int64) (*ports.GatewayRefund, error) {
	if m.createRefundFn != nil {
		return m.createRefundFn(ctx, paymentID, amountMinor)
	}
	return &ports.GatewayRefund{ID: "rfnd_1", Status: "processed", AmountMinor: amountMinor}, nil
}

type mockVerifier struct {
	verifyPaymentFn func(gatewayOrderID, paymentID, signature string) bool
	verifyWebhookFn func(body []byte, signature string) bool
}

func (m *mockVerifier) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	if m.verifyPaymentFn != nil {
		return m.verifyPaymentFn(gatewayOrderID, paymentID, signature)
	}
	return true
}

func (m *mockVerifier) VerifyWebhook(body []byte, signature string) bool {
	if m.verifyWebhookFn != nil {
		return m.verifyWebhookFn(body, signature)
	}
	return true
}

type mockShipping struct {
	registerOrderFn       func(ctx context.Context, order domain.Order) (*ports.ShipmentRegistration, error)
	checkServiceabilityFn func(ctx context.Context, q ports.ServiceabilityQuery) (*ports.ServiceabilityResult, error)
	trackShipmentFn       func(ctx context.Context, shipmentID string) (*ports.TrackingStatus, error)
}

func (m *mockShipping) RegisterOrder(ctx context.Context, order domain.Order) (*ports.ShipmentRegistration, error) {
	if m.registerOrderFn != nil {
		return m.registerOrderFn(ctx, order)
	}
	return &ports.ShipmentRegistration{ProviderOrderID: "sr-order-1", ShipmentID: "sr-ship-1"}, nil
}

func (m *mockShipping) CheckServiceability(ctx context.Context, q ports.ServiceabilityQuery) (*ports.ServiceabilityResult, error) {
	if m.checkServiceabilityFn != nil {
		return m.checkServiceabilityFn(ctx, q)
	}
	return &ports.ServiceabilityResult{Serviceable: true}, nil
}

func (m *mockShipping) TrackShipment(ctx context.Context, shipmentID string) (*ports.TrackingStatus, error) {
	if m.trackShipmentFn != nil {
		return m.trackShipmentFn(ctx, shipmentID)
	}
	return &ports.TrackingStatus{ShipmentID: shipmentID}, nil
}

type mockNotifier struct {
	orderPlacedFn      func(ctx context.Context, userID, orderNumber string) error
	paymentConfirmedFn func(ctx context.Context, userID, orderNumber string) error
	statusChangedFn    func(ctx context.Context, userID, orderNumber string, status domain.OrderStatus) error
	refundIssuedFn     func(ctx context.Context, userID, orderNumber string, amount decimal.Decimal) error
}

func (m *mockNotifier) OrderPlaced(ctx context.Context, userID, orderNumber string) error {
	if m.orderPlacedFn != nil {
		return m.orderPlacedFn(ctx, userID, orderNumber)
	}
	return nil
}

func (m *mockNotifier) PaymentConfirmed(ctx context.Context, userID, orderNumber string) error {
	if m.paymentConfirmedFn != nil {
		return m.paymentConfirmedFn(ctx, userID, orderNumber)
	}
	return nil
}

func (m *mockNotifier) StatusChanged(ctx context.Context, userID, orderNumber string, status domain.OrderStatus) error {
	if m.statusChangedFn != nil {
		return m.statusChangedFn(ctx, userID, orderNumber, status)
	}
	return nil
}

func (m *mockNotifier) RefundIssued(ctx context.Context, userID, orderNumber string, amount decimal.Decimal) error {
	if m.refundIssuedFn != nil {
		return m.refundIssuedFn(ctx, userID, orderNumber, amount)
	}
	return nil
}

type mockCatalog struct {
	getProductFn func(ctx context.Context, id string) (*ports.Product, error)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*ports.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

type mockCouponStore struct {
	getByCodeFn func(ctx context.Context, code string) (*ports.Coupon, error)
}

func (m *mockCouponStore) GetByCode(ctx context.Context, code string) (*ports.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, ports.ErrNotFound
}
