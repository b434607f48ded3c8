package shiprocket

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// StatusTransitioner applies a lifecycle transition with full business
// rules, including cash-on-delivery settlement on delivery.
type StatusTransitioner interface {
	TransitionStatus(ctx context.Context, orderID string, target domain.OrderStatus, actor, notes string) (*domain.Order, error)
}

// Poller periodically reconciles open shipments against the courier's
// tracking feed. It is the pull-side complement to gateway webhooks:
// shipping has no push channel, so delivery progress is polled.
type Poller struct {
	repo        ports.OrderRepository
	provider    ports.ShippingProvider
	transitions StatusTransitioner
	logger      *slog.Logger
	interval    time.Duration
}

func NewPoller(repo ports.OrderRepository, provider ports.ShippingProvider, transitions StatusTransitioner, logger *slog.Logger, interval time.Duration) *Poller {
	return &Poller{
		repo:        repo,
		provider:    provider,
		transitions: transitions,
		logger:      logger,
		interval:    interval,
	}
}

// Run polls until the context is cancelled. Sweeps are sequential, so a
// slow provider never causes overlapping passes.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	orders, err := p.repo.ListOpenShipments(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "shipment sweep failed", slog.String("error", err.Error()))
		return
	}

	for _, order := range orders {
		if err := p.reconcile(ctx, order); err != nil {
			p.logger.WarnContext(ctx, "shipment reconcile failed",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()))
		}
	}
}

func (p *Poller) reconcile(ctx context.Context, order domain.Order) error {
	tracking, err := p.provider.TrackShipment(ctx, order.Shipment.ShipmentID)
	if err != nil {
		return err
	}
	if tracking.Status == "" || tracking.Status == order.Shipment.Status {
		return nil
	}

	shipment := *order.Shipment
	shipment.Status = tracking.Status
	if tracking.Courier != "" {
		shipment.Courier = tracking.Courier
	}
	if tracking.TrackingID != "" {
		shipment.TrackingID = tracking.TrackingID
	}
	if err := p.repo.SetShipment(ctx, order.ID, shipment); err != nil {
		return err
	}

	target, ok := orderStatusFor(tracking.Status)
	if !ok || target == order.Status {
		return nil
	}
	if err := order.CanTransitionTo(target); err != nil {
		// The courier feed can lag behind manual status changes.
		p.logger.DebugContext(ctx, "skipping courier-driven transition",
			slog.String("order_id", order.ID),
			slog.String("target", string(target)),
			slog.String("reason", err.Error()))
		return nil
	}
	if _, err := p.transitions.TransitionStatus(ctx, order.ID, target, "shipment-poller", tracking.Status); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "order status advanced from tracking",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("status", string(target)))
	return nil
}

// orderStatusFor maps a courier status phrase onto the order lifecycle.
// Unrecognized phrases leave the order status alone.
func orderStatusFor(courierStatus string) (domain.OrderStatus, bool) {
	switch strings.ToLower(courierStatus) {
	case "shipped", "in transit", "out for delivery", "picked up":
		return domain.StatusShipped, true
	case "delivered":
		return domain.StatusDelivered, true
	default:
		return "", false
	}
}
