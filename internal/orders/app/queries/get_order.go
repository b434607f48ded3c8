package queries

import (
	"context"
	"strings"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// GetOrderQuery retrieves an order by its internal id. A non-empty
// RequesterID restricts the result to orders the requester owns.
type GetOrderQuery struct {
	OrderID     string
	RequesterID string
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderID) == "" {
		return ports.Invalid("order_id is required")
	}
	return nil
}

// GetOrderQueryHandler executes GetOrderQuery.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

// Handle executes the query and retrieves the order.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}

	if query.RequesterID != "" && query.RequesterID != order.UserID {
		return nil, ports.ErrForbidden
	}

	return order, nil
}
