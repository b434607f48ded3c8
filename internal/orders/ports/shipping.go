package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

// ShipmentRegistration carries the provider's correlation ids for a
// registered order.
type ShipmentRegistration struct {
	ProviderOrderID string
	ShipmentID      string
}

// ServiceabilityQuery asks whether the provider can move a parcel
// between two postcodes.
type ServiceabilityQuery struct {
	OriginPostcode string
	DestPostcode   string
	CashOnDelivery bool
	WeightKG       float64
}

// ServiceabilityResult is the provider's answer plus a cost estimate.
type ServiceabilityResult struct {
	Serviceable   bool
	CourierName   string
	EstimatedDays int
	Rate          decimal.Decimal
}

// TrackingStatus is a point-in-time courier status for a shipment.
type TrackingStatus struct {
	ShipmentID string
	Courier    string
	TrackingID string
	Status     string
}

// ShippingProvider registers paid/placed orders with the courier
// network and answers tracking queries. Failures here are advisory:
// they never fail order creation or payment confirmation.
type ShippingProvider interface {
	RegisterOrder(ctx context.Context, order domain.Order) (*ShipmentRegistration, error)
	CheckServiceability(ctx context.Context, q ServiceabilityQuery) (*ServiceabilityResult, error)
	TrackShipment(ctx context.Context, shipmentID string) (*TrackingStatus, error)
}
