package queries

import (
	"context"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// ListOrdersQuery returns orders matching a filter.
type ListOrdersQuery struct {
	Filter ports.ListFilter
}

// ListOrdersQueryHandler executes ListOrdersQuery.
type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewListOrdersQueryHandler constructs a ListOrdersQueryHandler.
func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

// Handle executes the query.
func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	if query.Filter.Status != nil && !domain.ValidStatus(*query.Filter.Status) {
		return nil, ports.Invalid("unknown status filter %q", *query.Filter.Status)
	}
	return h.repo.List(ctx, query.Filter)
}
