package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		order   domain.Order
		target  domain.OrderStatus
		allowed bool
	}{
		{
			name:    "pending to processing",
			order:   domain.Order{Status: domain.StatusPending},
			target:  domain.StatusProcessing,
			allowed: true,
		},
		{
			name:    "processing to shipped",
			order:   domain.Order{Status: domain.StatusProcessing},
			target:  domain.StatusShipped,
			allowed: true,
		},
		{
			name:    "pending straight to shipped",
			order:   domain.Order{Status: domain.StatusPending},
			target:  domain.StatusShipped,
			allowed: true,
		},
		{
			name:    "shipped back to processing",
			order:   domain.Order{Status: domain.StatusShipped},
			target:  domain.StatusProcessing,
			allowed: false,
		},
		{
			name:    "paid shipped to delivered",
			order:   domain.Order{Status: domain.StatusShipped, IsPaid: true},
			target:  domain.StatusDelivered,
			allowed: true,
		},
		{
			name:    "unpaid prepaid order cannot be delivered",
			order:   domain.Order{Status: domain.StatusShipped, PaymentMethod: domain.MethodRazorpay},
			target:  domain.StatusDelivered,
			allowed: false,
		},
		{
			name:    "unpaid cash on delivery order can be delivered",
			order:   domain.Order{Status: domain.StatusShipped, PaymentMethod: domain.MethodCashOnDelivery},
			target:  domain.StatusDelivered,
			allowed: true,
		},
		{
			name:    "delivered twice",
			order:   domain.Order{Status: domain.StatusDelivered, IsPaid: true},
			target:  domain.StatusDelivered,
			allowed: false,
		},
		{
			name:    "cancelled order cannot be delivered",
			order:   domain.Order{Status: domain.StatusCancelled, IsPaid: true},
			target:  domain.StatusDelivered,
			allowed: false,
		},
		{
			name:    "pending can be cancelled",
			order:   domain.Order{Status: domain.StatusPending},
			target:  domain.StatusCancelled,
			allowed: true,
		},
		{
			name:    "shipped can be cancelled",
			order:   domain.Order{Status: domain.StatusShipped, IsPaid: true},
			target:  domain.StatusCancelled,
			allowed: true,
		},
		{
			name:    "delivered cannot be cancelled",
			order:   domain.Order{Status: domain.StatusDelivered, IsPaid: true},
			target:  domain.StatusCancelled,
			allowed: false,
		},
		{
			name:    "refunded cannot be cancelled",
			order:   domain.Order{Status: domain.StatusRefunded, IsPaid: true},
			target:  domain.StatusCancelled,
			allowed: false,
		},
		{
			name:    "unknown target",
			order:   domain.Order{Status: domain.StatusPending},
			target:  domain.OrderStatus("archived"),
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.CanTransitionTo(tt.target)
			if tt.allowed && err != nil {
				t.Errorf("expected transition allowed, got: %v", err)
			}
			if !tt.allowed && err == nil {
				t.Error("expected transition rejected")
			}
		})
	}
}

func TestTotalsBalance(t *testing.T) {
	order := domain.Order{
		ItemsPrice:     dec("699.98"),
		TaxPrice:       dec("35.00"),
		ShippingPrice:  dec("50.00"),
		DiscountAmount: dec("75.01"),
		TotalPrice:     dec("709.97"),
	}
	if !order.TotalsBalance() {
		t.Error("expected balanced totals")
	}

	order.TotalPrice = dec("710.00")
	if order.TotalsBalance() {
		t.Error("expected imbalance detected")
	}
}

func TestPaidWith(t *testing.T) {
	order := domain.Order{
		IsPaid: true,
		PaymentResult: &domain.PaymentResult{
			PaymentID: "pay_123",
		},
	}

	if !order.PaidWith("pay_123") {
		t.Error("expected match on applied payment")
	}
	if order.PaidWith("pay_999") {
		t.Error("expected no match for a different payment")
	}

	order.IsPaid = false
	if order.PaidWith("pay_123") {
		t.Error("expected no match before settlement")
	}
}

func TestRefundCompleted(t *testing.T) {
	order := domain.Order{}
	if order.RefundCompleted() {
		t.Error("expected no refund on a fresh order")
	}

	order.Refund = &domain.Refund{Status: domain.RefundPending}
	if order.RefundCompleted() {
		t.Error("expected pending refund not counted as completed")
	}

	order.Refund.Status = domain.RefundCompleted
	if !order.RefundCompleted() {
		t.Error("expected completed refund detected")
	}
}
