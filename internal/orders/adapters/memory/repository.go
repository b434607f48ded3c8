package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development
// and tests. The conditional mutations hold the same at-most-once
// guarantees as the Postgres adapter, serialized under one mutex.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]domain.Order
	counters map[string]int64
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		orders:   make(map[string]domain.Order),
		counters: make(map[string]int64),
	}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.orders[order.ID] = order
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := order
	return &copy, nil
}

// GetByGatewayOrderID fetches the order bound to a gateway order id.
func (r *Repository) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.GatewayOrderID == gatewayOrderID && gatewayOrderID != "" {
			copy := order
			return &copy, nil
		}
	}
	return nil, ports.ErrNotFound
}

// GetByPaymentID fetches the order that recorded a gateway payment id.
func (r *Repository) GetByPaymentID(_ context.Context, paymentID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.PaymentResult != nil && order.PaymentResult.PaymentID == paymentID && paymentID != "" {
			copy := order
			return &copy, nil
		}
	}
	return nil, ports.ErrNotFound
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, result[start:end])

	return slice, nil
}

// NextOrderSequence bumps and returns the per-day order counter.
func (r *Repository) NextOrderSequence(_ context.Context, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := day.UTC().Format("20060102")
	r.counters[key]++
	return r.counters[key], nil
}

// BindPaymentIntent attaches a gateway order id to an unpaid order.
func (r *Repository) BindPaymentIntent(_ context.Context, orderID, gatewayOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	if order.IsPaid {
		return ports.ErrAlreadyPaid
	}
	if order.GatewayOrderID != "" {
		return ports.ErrIntentExists
	}

	order.GatewayOrderID = gatewayOrderID
	order.UpdatedAt = time.Now().UTC()
	r.orders[orderID] = order
	return nil
}

// MarkPaid applies a captured payment exactly once per order.
func (r *Repository) MarkPaid(_ context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	if order.IsPaid {
		return ports.ErrAlreadyPaid
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &result
	if order.Status == domain.StatusPending {
		order.Status = domain.StatusProcessing
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[orderID] = order
	return nil
}

// RecordPaymentFailure stores the failure detail and cancels the order.
func (r *Repository) RecordPaymentFailure(_ context.Context, orderID string, result domain.PaymentResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	if order.IsPaid || order.IsTerminal() {
		return nil
	}

	now := time.Now().UTC()
	order.PaymentResult = &result
	order.Status = domain.StatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	r.orders[orderID] = order
	return nil
}

// UpdateStatus sets the status and the matching timestamp.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.IsTerminal() && order.Status != status {
		return ports.ErrInvalidState
	}

	now := time.Now().UTC()
	order.Status = status
	switch status {
	case domain.StatusShipped:
		order.ShippedAt = &now
	case domain.StatusDelivered:
		order.DeliveredAt = &now
	case domain.StatusCancelled:
		order.CancelledAt = &now
	}
	order.UpdatedAt = now
	r.orders[id] = order
	return nil
}

// SetRefund writes the refund sub-record; completing twice is rejected.
func (r *Repository) SetRefund(_ context.Context, id string, refund domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.RefundCompleted() && refund.Status == domain.RefundCompleted {
		return ports.ErrInvalidState
	}

	order.Refund = &refund
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// SetShipment stores shipping provider correlation ids.
func (r *Repository) SetShipment(_ context.Context, id string, shipment domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	order.Shipment = &shipment
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// ListOpenShipments returns orders handed to the shipping provider that
// are not yet delivered or cancelled.
func (r *Repository) ListOpenShipments(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.Shipment == nil {
			continue
		}
		if order.IsTerminal() {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
