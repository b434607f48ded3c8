package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// ItemInput is one checkout line: either a catalog reference plus
// quantity, or an inline snapshot for ad-hoc items.
type ItemInput struct {
	ProductID string
	Name      string
	Image     string
	Price     *decimal.Decimal
	Quantity  int
}

// TotalsInput carries client-computed money figures. When absent the
// handler falls back to computing the subtotal from item price and
// quantity with zero tax and shipping.
type TotalsInput struct {
	Items    decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// PlaceOrderCommand captures a storefront checkout request after the
// HTTP edge has normalized it.
type PlaceOrderCommand struct {
	UserID          string
	Items           []ItemInput
	ShippingAddress domain.Address
	PaymentMethod   domain.PaymentMethod
	Totals          *TotalsInput
	CouponCode      string
}

func (c PlaceOrderCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ports.Invalid("user_id is required")
	}
	if len(c.Items) == 0 {
		return ports.Invalid("at least one item is required")
	}
	for i, item := range c.Items {
		if item.Quantity <= 0 {
			return ports.Invalid("item %d: quantity must be positive", i)
		}
		if item.ProductID == "" && strings.TrimSpace(item.Name) == "" {
			return ports.Invalid("item %d: either product_id or an inline name is required", i)
		}
		if item.ProductID == "" && item.Price == nil {
			return ports.Invalid("item %d: inline items require a price", i)
		}
	}
	if !domain.ValidPaymentMethod(c.PaymentMethod) {
		return ports.Invalid("unknown payment method %q", c.PaymentMethod)
	}
	if strings.TrimSpace(c.ShippingAddress.Line1) == "" {
		return ports.Invalid("shipping address line1 is required")
	}
	if strings.TrimSpace(c.ShippingAddress.Postcode) == "" {
		return ports.Invalid("shipping address postcode is required")
	}
	return nil
}

// PlaceOrderHandler creates orders.
type PlaceOrderHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error)
}

type PlaceOrderCommandHandler struct {
	repo     ports.OrderRepository
	catalog  ports.ProductCatalog
	coupons  ports.CouponStore
	shipping ports.ShippingProvider
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewPlaceOrderCommandHandler(
	repo ports.OrderRepository,
	catalog ports.ProductCatalog,
	coupons ports.CouponStore,
	shipping ports.ShippingProvider,
	notifier ports.Notifier,
	logger *slog.Logger,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		repo:     repo,
		catalog:  catalog,
		coupons:  coupons,
		shipping: shipping,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, err := h.resolveItems(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Client totals are used when present; the balance identity below is
	// the guard against a breakdown that does not add up.
	itemsPrice := subtotal
	tax := decimal.Zero
	shippingFee := decimal.Zero
	discount := decimal.Zero
	if cmd.Totals != nil {
		itemsPrice = cmd.Totals.Items
		tax = cmd.Totals.Tax
		shippingFee = cmd.Totals.Shipping
		discount = cmd.Totals.Discount
	}

	if cmd.CouponCode != "" {
		couponDiscount, err := h.couponDiscount(ctx, cmd.CouponCode, itemsPrice)
		if err != nil {
			return nil, err
		}
		discount = couponDiscount
	}

	total := itemsPrice.Add(tax).Add(shippingFee).Sub(discount)
	if cmd.Totals != nil {
		if !cmd.Totals.Total.Equal(total) {
			return nil, ports.Invalid("total %s does not equal items + tax + shipping - discount", cmd.Totals.Total)
		}
		total = cmd.Totals.Total
	}
	if total.IsNegative() {
		return nil, ports.Invalid("order total must not be negative")
	}

	now := time.Now().UTC()
	seq, err := h.repo.NextOrderSequence(ctx, now)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     domain.FormatOrderNumber(now, seq),
		UserID:          cmd.UserID,
		Items:           items,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		ItemsPrice:      itemsPrice,
		TaxPrice:        tax,
		ShippingPrice:   shippingFee,
		DiscountAmount:  discount,
		TotalPrice:      total,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := order.Validate(); err != nil {
		return nil, ports.Invalid("%v", err)
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	// Shipping registration is advisory: failures are logged and never
	// roll back the created order.
	if registration, err := h.shipping.RegisterOrder(ctx, order); err != nil {
		h.logger.WarnContext(ctx, "shipping registration failed",
			"order_id", order.ID,
			"order_number", order.OrderNumber,
			"error", err,
		)
	} else {
		shipment := domain.Shipment{
			ProviderOrderID: registration.ProviderOrderID,
			ShipmentID:      registration.ShipmentID,
		}
		if err := h.repo.SetShipment(ctx, order.ID, shipment); err != nil {
			h.logger.WarnContext(ctx, "failed to store shipment ids",
				"order_id", order.ID,
				"error", err,
			)
		} else {
			order.Shipment = &shipment
		}
	}

	if err := h.notifier.OrderPlaced(ctx, order.UserID, order.OrderNumber); err != nil {
		h.logger.WarnContext(ctx, "order placement notification failed",
			"order_id", order.ID,
			"error", err,
		)
	}

	return &order, nil
}

func (h *PlaceOrderCommandHandler) resolveItems(ctx context.Context, inputs []ItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(inputs))
	for i, input := range inputs {
		if input.ProductID == "" {
			items = append(items, domain.OrderItem{
				Name:     input.Name,
				Image:    input.Image,
				Price:    *input.Price,
				Quantity: input.Quantity,
			})
			continue
		}

		product, err := h.catalog.GetProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, ports.Invalid("item %d: product %s not found", i, input.ProductID)
			}
			return nil, err
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  input.Quantity,
		})
	}
	return items, nil
}

func (h *PlaceOrderCommandHandler) couponDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	coupon, err := h.coupons.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return decimal.Zero, ports.Invalid("coupon %q not found", code)
		}
		return decimal.Zero, err
	}

	discount := coupon.Amount
	if coupon.Percent.IsPositive() {
		discount = subtotal.Mul(coupon.Percent).Div(decimal.NewFromInt(100)).Round(2)
	}
	if coupon.MaxDiscount.IsPositive() && discount.GreaterThan(coupon.MaxDiscount) {
		discount = coupon.MaxDiscount
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, nil
}
