package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// Gateway event kinds this engine acts on. Anything else is
// acknowledged and ignored so the gateway's retry loop stays quiet.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
	EventOrderPaid       = "order.paid"
)

// GatewayEvent is the already-authenticated webhook envelope. Signature
// verification happens at the HTTP edge before the body is interpreted.
type GatewayEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type eventPayload struct {
	Payment struct {
		Entity struct {
			ID               string `json:"id"`
			OrderID          string `json:"order_id"`
			Status           string `json:"status"`
			Amount           int64  `json:"amount"`
			ErrorDescription string `json:"error_description"`
		} `json:"entity"`
	} `json:"payment"`
	Refund struct {
		Entity struct {
			ID        string `json:"id"`
			PaymentID string `json:"payment_id"`
			Amount    int64  `json:"amount"`
			Status    string `json:"status"`
		} `json:"entity"`
	} `json:"refund"`
	Order struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
	} `json:"order"`
}

// ApplyGatewayEventHandler reconciles asynchronous gateway events
// against the order store.
type ApplyGatewayEventHandler interface {
	Handle(ctx context.Context, event GatewayEvent) error
}

type ApplyGatewayEventCommandHandler struct {
	repo    ports.OrderRepository
	confirm ConfirmPaymentHandler
	logger  *slog.Logger
}

func NewApplyGatewayEventCommandHandler(
	repo ports.OrderRepository,
	confirm ConfirmPaymentHandler,
	logger *slog.Logger,
) *ApplyGatewayEventCommandHandler {
	return &ApplyGatewayEventCommandHandler{
		repo:    repo,
		confirm: confirm,
		logger:  logger,
	}
}

// Handle applies one gateway event. An error return means the event was
// understood but could not be applied; callers ack the gateway either
// way, since this system never fails the delivery loop for events it
// cannot act on.
func (h *ApplyGatewayEventCommandHandler) Handle(ctx context.Context, event GatewayEvent) error {
	var payload eventPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return ports.Invalid("malformed event payload: %v", err)
		}
	}

	switch event.Event {
	case EventPaymentCaptured:
		return h.applyCapture(ctx, payload.Payment.Entity.OrderID, payload.Payment.Entity.ID)
	case EventPaymentFailed:
		return h.applyFailure(ctx, payload)
	case EventRefundProcessed:
		return h.applyRefund(ctx, payload)
	case EventOrderPaid:
		return h.applyOrderPaid(ctx, payload)
	default:
		h.logger.DebugContext(ctx, "ignoring gateway event", "event", event.Event)
		return nil
	}
}

func (h *ApplyGatewayEventCommandHandler) applyCapture(ctx context.Context, gatewayOrderID, paymentID string) error {
	if gatewayOrderID == "" || paymentID == "" {
		return ports.Invalid("capture event missing order or payment id")
	}

	// The webhook body is the authoritative capture notice; no second
	// gateway re-fetch is needed.
	_, err := h.confirm.Handle(ctx, ConfirmPaymentCommand{
		GatewayOrderID: gatewayOrderID,
		PaymentID:      paymentID,
		TrustCapture:   true,
	})
	return err
}

func (h *ApplyGatewayEventCommandHandler) applyFailure(ctx context.Context, payload eventPayload) error {
	entity := payload.Payment.Entity
	if entity.OrderID == "" {
		return ports.Invalid("failure event missing order id")
	}

	order, err := h.repo.GetByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		return err
	}
	if order.IsPaid || order.IsTerminal() {
		h.logger.InfoContext(ctx, "ignoring payment failure for settled order",
			"order_id", order.ID,
			"status", order.Status,
		)
		return nil
	}

	result := domain.PaymentResult{
		PaymentID:      entity.ID,
		GatewayOrderID: entity.OrderID,
		Status:         entity.Status,
		Reason:         entity.ErrorDescription,
		UpdatedAt:      time.Now().UTC(),
	}
	return h.repo.RecordPaymentFailure(ctx, order.ID, result)
}

func (h *ApplyGatewayEventCommandHandler) applyRefund(ctx context.Context, payload eventPayload) error {
	entity := payload.Refund.Entity
	if entity.PaymentID == "" {
		return ports.Invalid("refund event missing payment id")
	}

	order, err := h.repo.GetByPaymentID(ctx, entity.PaymentID)
	if err != nil {
		return err
	}
	if order.RefundCompleted() {
		return nil
	}

	now := time.Now().UTC()
	refund := domain.Refund{
		RefundID:   entity.ID,
		Amount:     domain.FromMinorUnits(entity.Amount),
		Status:     domain.RefundCompleted,
		RefundedAt: &now,
	}
	if order.Refund != nil {
		refund.RequestedBy = order.Refund.RequestedBy
		refund.Reason = order.Refund.Reason
	}
	return h.repo.SetRefund(ctx, order.ID, refund)
}

func (h *ApplyGatewayEventCommandHandler) applyOrderPaid(ctx context.Context, payload eventPayload) error {
	gatewayOrderID := payload.Order.Entity.ID
	if gatewayOrderID == "" {
		gatewayOrderID = payload.Payment.Entity.OrderID
	}
	if gatewayOrderID == "" {
		return ports.Invalid("order.paid event missing order id")
	}

	order, err := h.repo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return err
	}
	// Lightweight fallback confirmation: never overwrite the richer
	// detail payment.captured may have written already.
	if order.IsPaid {
		return nil
	}

	paymentID := payload.Payment.Entity.ID
	if paymentID == "" {
		return ports.Invalid("order.paid event missing payment id")
	}

	_, err = h.confirm.Handle(ctx, ConfirmPaymentCommand{
		GatewayOrderID: gatewayOrderID,
		PaymentID:      paymentID,
		TrustCapture:   true,
	})
	if errors.Is(err, ports.ErrAlreadyPaid) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply order.paid: %w", err)
	}
	return nil
}
