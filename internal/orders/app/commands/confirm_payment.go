package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// ConfirmPaymentCommand applies a captured payment to an order. It is
// fed by two concurrent entry points: the synchronous client callback
// and the asynchronous gateway webhook. Both converge on the same
// at-most-once guard keyed on the gateway payment id.
type ConfirmPaymentCommand struct {
	OrderID        string
	GatewayOrderID string
	PaymentID      string
	Signature      string
	RequesterID    string

	// TrustCapture is set by webhook ingestion only: the webhook payload
	// is itself the authoritative capture notice, so the handler skips
	// the second gateway re-fetch.
	TrustCapture bool
}

func (c ConfirmPaymentCommand) Validate() error {
	if strings.TrimSpace(c.PaymentID) == "" {
		return ports.Invalid("payment_id is required")
	}
	if strings.TrimSpace(c.OrderID) == "" && strings.TrimSpace(c.GatewayOrderID) == "" {
		return ports.Invalid("one of order_id or gateway_order_id is required")
	}
	return nil
}

// ConfirmPaymentHandler reconciles payment confirmations.
type ConfirmPaymentHandler interface {
	Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*domain.Order, error)
}

type ConfirmPaymentCommandHandler struct {
	repo     ports.OrderRepository
	gateway  ports.PaymentGateway
	verifier ports.SignatureVerifier
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewConfirmPaymentCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	verifier ports.SignatureVerifier,
	notifier ports.Notifier,
	logger *slog.Logger,
) *ConfirmPaymentCommandHandler {
	return &ConfirmPaymentCommandHandler{
		repo:     repo,
		gateway:  gateway,
		verifier: verifier,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.resolveOrder(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if cmd.RequesterID != "" && cmd.RequesterID != order.UserID {
		return nil, ports.ErrForbidden
	}

	// Reapplying the same payment id is a safe no-op: no side effects,
	// no second notification.
	if order.PaidWith(cmd.PaymentID) {
		return order, nil
	}
	if order.IsPaid {
		return nil, fmt.Errorf("%w: paid with a different payment", ports.ErrAlreadyPaid)
	}

	if cmd.Signature != "" {
		if !h.verifier.VerifyPaymentSignature(order.GatewayOrderID, cmd.PaymentID, cmd.Signature) {
			return nil, ports.ErrInvalidSignature
		}
	}

	gatewayOrderID := order.GatewayOrderID
	if !cmd.TrustCapture {
		// Never trust the client-reported status alone: re-fetch the
		// payment from the gateway and require captured.
		payment, err := h.gateway.FetchPayment(ctx, cmd.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment.Status != ports.PaymentStatusCaptured {
			return nil, fmt.Errorf("%w: gateway status %q", ports.ErrPaymentRejected, payment.Status)
		}
		if payment.OrderID != "" {
			gatewayOrderID = payment.OrderID
		}
	}

	now := time.Now().UTC()
	result := domain.PaymentResult{
		PaymentID:      cmd.PaymentID,
		GatewayOrderID: gatewayOrderID,
		Status:         ports.PaymentStatusCaptured,
		UpdatedAt:      now,
	}

	if err := h.repo.MarkPaid(ctx, order.ID, result, now); err != nil {
		if errors.Is(err, ports.ErrAlreadyPaid) {
			// Lost the race against the other confirmation path. Same
			// payment id means the outcome is identical, so report success
			// without re-running side effects.
			current, readErr := h.repo.GetByID(ctx, order.ID)
			if readErr != nil {
				return nil, readErr
			}
			if current.PaidWith(cmd.PaymentID) {
				return current, nil
			}
		}
		return nil, err
	}

	if err := h.notifier.PaymentConfirmed(ctx, order.UserID, order.OrderNumber); err != nil {
		h.logger.WarnContext(ctx, "payment confirmation notification failed",
			"order_id", order.ID,
			"error", err,
		)
	}

	return h.repo.GetByID(ctx, order.ID)
}

func (h *ConfirmPaymentCommandHandler) resolveOrder(ctx context.Context, cmd ConfirmPaymentCommand) (*domain.Order, error) {
	if cmd.OrderID != "" {
		return h.repo.GetByID(ctx, cmd.OrderID)
	}
	return h.repo.GetByGatewayOrderID(ctx, cmd.GatewayOrderID)
}
