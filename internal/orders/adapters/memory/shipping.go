package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// ShippingStub stands in for a real shipping provider when none is
// configured. Registration mints deterministic local ids so downstream
// code paths that expect a shipment still work.
type ShippingStub struct {
	mu       sync.Mutex
	seq      int
	statuses map[string]string
}

// NewShippingStub creates a stub shipping provider.
func NewShippingStub() *ShippingStub {
	return &ShippingStub{statuses: make(map[string]string)}
}

// SetStatus primes the tracking answer for a shipment, for tests.
func (s *ShippingStub) SetStatus(shipmentID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[shipmentID] = status
}

func (s *ShippingStub) RegisterOrder(_ context.Context, order domain.Order) (*ports.ShipmentRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return &ports.ShipmentRegistration{
		ProviderOrderID: fmt.Sprintf("local-%s", order.OrderNumber),
		ShipmentID:      fmt.Sprintf("shp-%d", s.seq),
	}, nil
}

func (s *ShippingStub) CheckServiceability(_ context.Context, _ ports.ServiceabilityQuery) (*ports.ServiceabilityResult, error) {
	return &ports.ServiceabilityResult{
		Serviceable:   true,
		CourierName:   "local-courier",
		EstimatedDays: 3,
	}, nil
}

func (s *ShippingStub) TrackShipment(_ context.Context, shipmentID string) (*ports.TrackingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &ports.TrackingStatus{
		ShipmentID: shipmentID,
		Courier:    "local-courier",
		Status:     s.statuses[shipmentID],
	}, nil
}
