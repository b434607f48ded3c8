package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// CreatePaymentIntentCommand asks the gateway to mint a remote payment
// intent for an order's total.
type CreatePaymentIntentCommand struct {
	OrderID     string
	RequesterID string
}

func (c CreatePaymentIntentCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return ports.Invalid("order_id is required")
	}
	return nil
}

// CreatePaymentIntentHandler mints remote intents.
type CreatePaymentIntentHandler interface {
	Handle(ctx context.Context, cmd CreatePaymentIntentCommand) (*ports.PaymentIntent, error)
}

type CreatePaymentIntentCommandHandler struct {
	repo     ports.OrderRepository
	gateway  ports.PaymentGateway
	currency string
}

func NewCreatePaymentIntentCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	currency string,
) *CreatePaymentIntentCommandHandler {
	return &CreatePaymentIntentCommandHandler{
		repo:     repo,
		gateway:  gateway,
		currency: currency,
	}
}

func (h *CreatePaymentIntentCommandHandler) Handle(ctx context.Context, cmd CreatePaymentIntentCommand) (*ports.PaymentIntent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if cmd.RequesterID != "" && cmd.RequesterID != order.UserID {
		return nil, ports.ErrForbidden
	}
	if order.IsPaid {
		return nil, fmt.Errorf("%w: order is already paid", ports.ErrInvalidState)
	}
	if order.Status == domain.StatusCancelled || order.Status == domain.StatusRefunded {
		return nil, fmt.Errorf("%w: order is cancelled", ports.ErrInvalidState)
	}
	if order.GatewayOrderID != "" {
		return nil, ports.ErrIntentExists
	}

	// Money goes to the gateway as integer minor units, never as a
	// floating-point major value.
	amountMinor := domain.ToMinorUnits(order.TotalPrice)

	intent, err := h.gateway.CreateIntent(ctx, order.OrderNumber, amountMinor, h.currency)
	if err != nil {
		return nil, err
	}

	if err := h.repo.BindPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}

	return intent, nil
}
