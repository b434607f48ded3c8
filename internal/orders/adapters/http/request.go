package http

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app/commands"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

// Checkout bodies arrive in more than one shape: older storefront
// clients send camelCase field names and put items under orderItems.
// The request types below accept both spellings and normalize before
// anything reaches the application layer.

type checkoutItem struct {
	ProductID   string           `json:"product_id"`
	ProductIDCC string           `json:"productId"`
	Product     string           `json:"product"`
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    int              `json:"quantity"`
	Qty         int              `json:"qty"`
}

func (i checkoutItem) toInput() commands.ItemInput {
	productID := firstNonEmpty(i.ProductID, i.ProductIDCC, i.Product)
	quantity := i.Quantity
	if quantity == 0 {
		quantity = i.Qty
	}
	return commands.ItemInput{
		ProductID: productID,
		Name:      i.Name,
		Image:     i.Image,
		Price:     i.Price,
		Quantity:  quantity,
	}
}

type checkoutAddress struct {
	FullName   string `json:"full_name"`
	FullNameCC string `json:"fullName"`
	Line1      string `json:"line1"`
	Address    string `json:"address"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	Postcode   string `json:"postcode"`
	PostalCode string `json:"postalCode"`
	PinCode    string `json:"pinCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	PhoneNo    string `json:"phoneNo"`
}

func (a checkoutAddress) toDomain() domain.Address {
	return domain.Address{
		FullName: firstNonEmpty(a.FullName, a.FullNameCC),
		Line1:    firstNonEmpty(a.Line1, a.Address),
		Line2:    a.Line2,
		City:     a.City,
		State:    a.State,
		Postcode: firstNonEmpty(a.Postcode, a.PostalCode, a.PinCode),
		Country:  a.Country,
		Phone:    firstNonEmpty(a.Phone, a.PhoneNo),
	}
}

type checkoutRequest struct {
	Items      []checkoutItem `json:"items"`
	OrderItems []checkoutItem `json:"orderItems"`

	ShippingAddress *checkoutAddress `json:"shipping_address"`
	ShippingInfo    *checkoutAddress `json:"shippingInfo"`

	PaymentMethod   string `json:"payment_method"`
	PaymentMethodCC string `json:"paymentMethod"`

	ItemsPrice    *decimal.Decimal `json:"itemsPrice"`
	TaxPrice      *decimal.Decimal `json:"taxPrice"`
	ShippingPrice *decimal.Decimal `json:"shippingPrice"`
	Discount      *decimal.Decimal `json:"discount"`
	TotalPrice    *decimal.Decimal `json:"totalPrice"`

	CouponCode   string `json:"coupon_code"`
	CouponCodeCC string `json:"couponCode"`
}

func (c checkoutRequest) toInput(userID string) app.PlaceOrderInput {
	items := c.Items
	if len(items) == 0 {
		items = c.OrderItems
	}
	inputs := make([]commands.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, item.toInput())
	}

	var address domain.Address
	if c.ShippingAddress != nil {
		address = c.ShippingAddress.toDomain()
	} else if c.ShippingInfo != nil {
		address = c.ShippingInfo.toDomain()
	}

	input := app.PlaceOrderInput{
		UserID:          userID,
		Items:           inputs,
		ShippingAddress: address,
		PaymentMethod:   domain.PaymentMethod(strings.ToLower(firstNonEmpty(c.PaymentMethod, c.PaymentMethodCC))),
		CouponCode:      firstNonEmpty(c.CouponCode, c.CouponCodeCC),
	}

	// Client totals are only trusted as a set: a request that sends a
	// grand total without the breakdown is recomputed server side.
	if c.TotalPrice != nil {
		totals := commands.TotalsInput{Total: *c.TotalPrice}
		if c.ItemsPrice != nil {
			totals.Items = *c.ItemsPrice
		}
		if c.TaxPrice != nil {
			totals.Tax = *c.TaxPrice
		}
		if c.ShippingPrice != nil {
			totals.Shipping = *c.ShippingPrice
		}
		if c.Discount != nil {
			totals.Discount = *c.Discount
		}
		input.Totals = &totals
	}

	return input
}

type confirmPaymentRequest struct {
	OrderID   string `json:"order_id"`
	OrderIDCC string `json:"orderId"`

	GatewayOrderID   string `json:"gateway_order_id"`
	RazorpayOrderID  string `json:"razorpay_order_id"`
	GatewayOrderIDCC string `json:"razorpayOrderId"`

	PaymentID         string `json:"payment_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	PaymentIDCC       string `json:"razorpayPaymentId"`

	Signature         string `json:"signature"`
	RazorpaySignature string `json:"razorpay_signature"`
	SignatureCC       string `json:"razorpaySignature"`
}

func (c confirmPaymentRequest) toInput(requesterID string) app.ConfirmPaymentInput {
	return app.ConfirmPaymentInput{
		OrderID:        firstNonEmpty(c.OrderID, c.OrderIDCC),
		GatewayOrderID: firstNonEmpty(c.GatewayOrderID, c.RazorpayOrderID, c.GatewayOrderIDCC),
		PaymentID:      firstNonEmpty(c.PaymentID, c.RazorpayPaymentID, c.PaymentIDCC),
		Signature:      firstNonEmpty(c.Signature, c.RazorpaySignature, c.SignatureCC),
		RequesterID:    requesterID,
	}
}

type transitionStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type refundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
