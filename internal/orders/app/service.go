package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app/commands"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app/queries"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/metrics"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// Service bundles the order lifecycle use cases exposed over the API.
type Service struct {
	repo      ports.OrderRepository
	shipping  ports.ShippingProvider
	idemStore ports.IdempotencyStore

	placeOrder     commands.PlaceOrderHandler
	createIntent   commands.CreatePaymentIntentHandler
	confirmPayment commands.ConfirmPaymentHandler
	transition     commands.TransitionStatusHandler
	refund         commands.ProcessRefundHandler
	gatewayEvents  commands.ApplyGatewayEventHandler

	getOrder   *queries.GetOrderQueryHandler
	listOrders *queries.ListOrdersQueryHandler
}

// Dependencies carries everything NewService wires together.
type Dependencies struct {
	Repo      ports.OrderRepository
	Catalog   ports.ProductCatalog
	Coupons   ports.CouponStore
	Gateway   ports.PaymentGateway
	Verifier  ports.SignatureVerifier
	Shipping  ports.ShippingProvider
	Notifier  ports.Notifier
	IdemStore ports.IdempotencyStore
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Currency  string
}

// NewService wires required dependencies.
func NewService(deps Dependencies) *Service {
	placeCore := commands.NewPlaceOrderCommandHandler(
		deps.Repo, deps.Catalog, deps.Coupons, deps.Shipping, deps.Notifier, deps.Logger,
	)
	confirmCore := commands.NewConfirmPaymentCommandHandler(
		deps.Repo, deps.Gateway, deps.Verifier, deps.Notifier, deps.Logger,
	)

	refundCore := commands.NewProcessRefundCommandHandler(
		deps.Repo, deps.Gateway, deps.Notifier, deps.Logger,
	)

	confirm := commands.NewObservableConfirmPaymentHandler(confirmCore, deps.Logger, deps.Metrics)
	gatewayEvents := commands.NewApplyGatewayEventCommandHandler(deps.Repo, confirm, deps.Logger)

	return &Service{
		repo:      deps.Repo,
		shipping:  deps.Shipping,
		idemStore: deps.IdemStore,

		placeOrder:     commands.NewObservablePlaceOrderHandler(placeCore, deps.Logger, deps.Metrics),
		createIntent:   commands.NewCreatePaymentIntentCommandHandler(deps.Repo, deps.Gateway, deps.Currency),
		confirmPayment: confirm,
		transition:     commands.NewTransitionStatusCommandHandler(deps.Repo, deps.Notifier, deps.Logger),
		refund:         commands.NewObservableProcessRefundHandler(refundCore, deps.Logger, deps.Metrics),
		gatewayEvents:  commands.NewObservableApplyGatewayEventHandler(gatewayEvents, deps.Logger, deps.Metrics),

		getOrder:   queries.NewGetOrderQueryHandler(deps.Repo),
		listOrders: queries.NewListOrdersQueryHandler(deps.Repo),
	}
}

// PlaceOrderInput captures a normalized checkout request.
type PlaceOrderInput struct {
	UserID          string
	Items           []commands.ItemInput
	ShippingAddress domain.Address
	PaymentMethod   domain.PaymentMethod
	Totals          *commands.TotalsInput
	CouponCode      string
}

// PlaceOrder orchestrates order creation, shipping handoff and the
// placement notification.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	cmd := commands.PlaceOrderCommand{
		UserID:          input.UserID,
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Totals:          input.Totals,
		CouponCode:      input.CouponCode,
	}
	return s.placeOrder.Handle(ctx, cmd)
}

// CreatePaymentIntent mints a remote gateway intent for an order.
func (s *Service) CreatePaymentIntent(ctx context.Context, orderID, requesterID string) (*ports.PaymentIntent, error) {
	return s.createIntent.Handle(ctx, commands.CreatePaymentIntentCommand{
		OrderID:     orderID,
		RequesterID: requesterID,
	})
}

// ConfirmPaymentInput captures the synchronous client confirmation.
type ConfirmPaymentInput struct {
	OrderID        string
	GatewayOrderID string
	PaymentID      string
	Signature      string
	RequesterID    string
}

// ConfirmPayment applies a client-reported capture after verifying it.
func (s *Service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*domain.Order, error) {
	return s.confirmPayment.Handle(ctx, commands.ConfirmPaymentCommand{
		OrderID:        input.OrderID,
		GatewayOrderID: input.GatewayOrderID,
		PaymentID:      input.PaymentID,
		Signature:      input.Signature,
		RequesterID:    input.RequesterID,
	})
}

// HandleGatewayEvent reconciles one authenticated webhook event.
func (s *Service) HandleGatewayEvent(ctx context.Context, event commands.GatewayEvent) error {
	return s.gatewayEvents.Handle(ctx, event)
}

// TransitionStatus moves an order to a new lifecycle status.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, target domain.OrderStatus, actor, notes string) (*domain.Order, error) {
	return s.transition.Handle(ctx, commands.TransitionStatusCommand{
		OrderID: orderID,
		Target:  target,
		Actor:   actor,
		Notes:   notes,
	})
}

// CancelOrder cancels the requester's own order; a paid order gets a
// pending refund opened alongside.
func (s *Service) CancelOrder(ctx context.Context, orderID, requesterID, reason string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && requesterID != order.UserID {
		return nil, ports.ErrForbidden
	}
	return s.transition.Handle(ctx, commands.TransitionStatusCommand{
		OrderID: orderID,
		Target:  domain.StatusCancelled,
		Actor:   requesterID,
		Notes:   reason,
	})
}

// ProcessRefund moves money back through the gateway.
func (s *Service) ProcessRefund(ctx context.Context, orderID string, amount *decimal.Decimal, reason, actor string) (*domain.Refund, error) {
	return s.refund.Handle(ctx, commands.ProcessRefundCommand{
		OrderID: orderID,
		Amount:  amount,
		Reason:  reason,
		Actor:   actor,
	})
}

// GetOrder retrieves an order by ID, enforcing ownership for non-admin
// requesters.
func (s *Service) GetOrder(ctx context.Context, id, requesterID string) (*domain.Order, error) {
	return s.getOrder.Handle(ctx, queries.GetOrderQuery{OrderID: id, RequesterID: requesterID})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.listOrders.Handle(ctx, queries.ListOrdersQuery{Filter: filter})
}

// CheckServiceability proxies a shipping serviceability query.
func (s *Service) CheckServiceability(ctx context.Context, q ports.ServiceabilityQuery) (*ports.ServiceabilityResult, error) {
	return s.shipping.CheckServiceability(ctx, q)
}

// SaveIdempotentResponse writes response details for a checkout key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
