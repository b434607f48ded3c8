package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// TransitionStatusCommand moves an order through its lifecycle on
// behalf of an operator or the shipping adapter.
type TransitionStatusCommand struct {
	OrderID string
	Target  domain.OrderStatus
	Actor   string
	Notes   string
}

func (c TransitionStatusCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return ports.Invalid("order_id is required")
	}
	switch c.Target {
	case domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered, domain.StatusCancelled:
		return nil
	}
	return ports.Invalid("unknown target status %q", c.Target)
}

// TransitionStatusHandler applies lifecycle transitions.
type TransitionStatusHandler interface {
	Handle(ctx context.Context, cmd TransitionStatusCommand) (*domain.Order, error)
}

type TransitionStatusCommandHandler struct {
	repo     ports.OrderRepository
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewTransitionStatusCommandHandler(
	repo ports.OrderRepository,
	notifier ports.Notifier,
	logger *slog.Logger,
) *TransitionStatusCommandHandler {
	return &TransitionStatusCommandHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *TransitionStatusCommandHandler) Handle(ctx context.Context, cmd TransitionStatusCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.CanTransitionTo(cmd.Target); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalidState, err)
	}

	now := time.Now().UTC()

	// Cash-on-delivery settles at the door: delivery doubles as payment
	// collection so the delivered-implies-paid invariant holds.
	if cmd.Target == domain.StatusDelivered && !order.IsPaid && order.PaymentMethod == domain.MethodCashOnDelivery {
		result := domain.PaymentResult{
			PaymentID: "cod-" + order.OrderNumber,
			Status:    "collected",
			UpdatedAt: now,
		}
		if err := h.repo.MarkPaid(ctx, order.ID, result, now); err != nil {
			return nil, err
		}
	}

	if err := h.repo.UpdateStatus(ctx, order.ID, cmd.Target); err != nil {
		return nil, err
	}

	// Cancelling a paid order opens a pending refund; the money movement
	// itself is a separate operation.
	if cmd.Target == domain.StatusCancelled && order.IsPaid && !order.RefundCompleted() {
		reason := cmd.Notes
		if reason == "" {
			reason = "order cancelled"
		}
		refund := domain.Refund{
			Amount:      order.TotalPrice,
			Status:      domain.RefundPending,
			RequestedBy: cmd.Actor,
			Reason:      reason,
		}
		if err := h.repo.SetRefund(ctx, order.ID, refund); err != nil {
			return nil, err
		}
	}

	if err := h.notifier.StatusChanged(ctx, order.UserID, order.OrderNumber, cmd.Target); err != nil {
		h.logger.WarnContext(ctx, "status change notification failed",
			"order_id", order.ID,
			"target", cmd.Target,
			"error", err,
		)
	}

	return h.repo.GetByID(ctx, order.ID)
}
