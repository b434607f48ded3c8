package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app/queries"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

type mockRepository struct {
	ports.OrderRepository

	getByIDFn func(ctx context.Context, id string) (*domain.Order, error)
	listFn    func(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func TestGetOrder(t *testing.T) {
	stored := &domain.Order{ID: "order-1", UserID: "user-1", Status: domain.StatusPending}

	t.Run("returns the order to its owner", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, id string) (*domain.Order, error) {
				if id != "order-1" {
					return nil, ports.ErrNotFound
				}
				return stored, nil
			},
		}

		handler := queries.NewGetOrderQueryHandler(repo)

		order, err := handler.Handle(context.Background(), queries.GetOrderQuery{
			OrderID:     "order-1",
			RequesterID: "user-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order.ID != "order-1" {
			t.Errorf("expected order-1, got %q", order.ID)
		}
	})

	t.Run("hides the order from other users", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return stored, nil
			},
		}

		handler := queries.NewGetOrderQueryHandler(repo)

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{
			OrderID:     "order-1",
			RequesterID: "user-2",
		})
		if !errors.Is(err, ports.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("empty requester bypasses the ownership check", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return stored, nil
			},
		}

		handler := queries.NewGetOrderQueryHandler(repo)

		if _, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "order-1"}); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("requires an order id", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		if _, err := handler.Handle(context.Background(), queries.GetOrderQuery{}); !errors.Is(err, ports.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestListOrders(t *testing.T) {
	t.Run("passes the filter through", func(t *testing.T) {
		var got ports.ListFilter
		repo := &mockRepository{
			listFn: func(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
				got = filter
				return []domain.Order{{ID: "order-1"}}, nil
			},
		}

		handler := queries.NewListOrdersQueryHandler(repo)

		status := domain.StatusShipped
		out, err := handler.Handle(context.Background(), queries.ListOrdersQuery{
			Filter: ports.ListFilter{UserID: "user-1", Status: &status, Page: 2, PageSize: 10},
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("expected one order, got %d", len(out))
		}
		if got.UserID != "user-1" || got.Page != 2 || got.PageSize != 10 {
			t.Errorf("unexpected filter: %+v", got)
		}
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		handler := queries.NewListOrdersQueryHandler(&mockRepository{})

		status := domain.OrderStatus("teleported")
		_, err := handler.Handle(context.Background(), queries.ListOrdersQuery{
			Filter: ports.ListFilter{Status: &status},
		})
		if !errors.Is(err, ports.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
