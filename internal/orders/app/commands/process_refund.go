package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// ProcessRefundCommand returns money for a paid order through the
// gateway. Amount defaults to the order's full total.
type ProcessRefundCommand struct {
	OrderID string
	Amount  *decimal.Decimal
	Reason  string
	Actor   string
}

func (c ProcessRefundCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return ports.Invalid("order_id is required")
	}
	if c.Amount != nil && !c.Amount.IsPositive() {
		return ports.Invalid("refund amount must be positive")
	}
	return nil
}

// ProcessRefundHandler issues refunds.
type ProcessRefundHandler interface {
	Handle(ctx context.Context, cmd ProcessRefundCommand) (*domain.Refund, error)
}

type ProcessRefundCommandHandler struct {
	repo     ports.OrderRepository
	gateway  ports.PaymentGateway
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewProcessRefundCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	logger *slog.Logger,
) *ProcessRefundCommandHandler {
	return &ProcessRefundCommandHandler{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *ProcessRefundCommandHandler) Handle(ctx context.Context, cmd ProcessRefundCommand) (*domain.Refund, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if !order.IsPaid || order.PaymentResult == nil || order.PaymentResult.PaymentID == "" {
		return nil, fmt.Errorf("%w: order has no captured payment to refund", ports.ErrInvalidState)
	}
	if order.RefundCompleted() {
		return nil, fmt.Errorf("%w: refund already completed", ports.ErrInvalidState)
	}

	amount := order.TotalPrice
	if cmd.Amount != nil {
		amount = *cmd.Amount
	}
	if amount.GreaterThan(order.TotalPrice) {
		return nil, ports.Invalid("refund amount %s exceeds order total %s", amount, order.TotalPrice)
	}

	// The gateway call is the point of no return: any failure aborts the
	// operation with no partial refund record written.
	gatewayRefund, err := h.gateway.CreateRefund(ctx, order.PaymentResult.PaymentID, domain.ToMinorUnits(amount))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refund := domain.Refund{
		RefundID:    gatewayRefund.ID,
		Amount:      domain.FromMinorUnits(gatewayRefund.AmountMinor),
		Status:      domain.RefundCompleted,
		RequestedBy: cmd.Actor,
		Reason:      cmd.Reason,
		RefundedAt:  &now,
	}
	if refund.Reason == "" && order.Refund != nil {
		refund.Reason = order.Refund.Reason
	}

	if err := h.repo.SetRefund(ctx, order.ID, refund); err != nil {
		return nil, err
	}

	// A direct refund of a live order retires it; a cancelled order keeps
	// its cancelled status with the completed refund alongside.
	if order.Status != domain.StatusCancelled {
		if err := h.repo.UpdateStatus(ctx, order.ID, domain.StatusRefunded); err != nil {
			h.logger.WarnContext(ctx, "failed to move refunded order to refunded status",
				"order_id", order.ID,
				"error", err,
			)
		}
	}

	if err := h.notifier.RefundIssued(ctx, order.UserID, order.OrderNumber, refund.Amount); err != nil {
		h.logger.WarnContext(ctx, "refund notification failed",
			"order_id", order.ID,
			"error", err,
		)
	}

	return &refund, nil
}
