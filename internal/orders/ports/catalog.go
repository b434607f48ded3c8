package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the slice of the catalog this core needs for item
// resolution. Catalog CRUD itself is an external collaborator.
type Product struct {
	ID    string
	Name  string
	Image string
	Price decimal.Decimal
}

// ProductCatalog resolves catalog references on order line items.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// Coupon discounts an order by percentage or flat amount, optionally
// clamped to a maximum discount.
type Coupon struct {
	Code        string
	Percent     decimal.Decimal
	Amount      decimal.Decimal
	MaxDiscount decimal.Decimal
}

// CouponStore looks up coupons at checkout.
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}
