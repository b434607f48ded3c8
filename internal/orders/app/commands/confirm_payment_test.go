package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app/commands"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

func unpaidOrder() *domain.Order {
	return &domain.Order{
		ID:             "order-1",
		OrderNumber:    "YT-20260830-0001",
		UserID:         "user-1",
		GatewayOrderID: "order_gw_1",
		TotalPrice:     dec("709.97"),
		ItemsPrice:     dec("709.97"),
		Status:         domain.StatusPending,
	}
}

func paidOrder(paymentID string) *domain.Order {
	order := unpaidOrder()
	order.IsPaid = true
	order.Status = domain.StatusProcessing
	order.PaymentResult = &domain.PaymentResult{
		PaymentID:      paymentID,
		GatewayOrderID: order.GatewayOrderID,
		Status:         ports.PaymentStatusCaptured,
	}
	return order
}

func newConfirmHandler(repo *mockRepository, gateway *mockGateway, verifier *mockVerifier, notifier *mockNotifier) *commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(repo, gateway, verifier, notifier, discardLogger())
}

func confirmCmd() commands.ConfirmPaymentCommand {
	return commands.ConfirmPaymentCommand{
		OrderID:   "order-1",
		PaymentID: "pay_123",
		Signature: "sig",
	}
}

func TestConfirmPayment(t *testing.T) {
	t.Run("marks order paid after gateway verification", func(t *testing.T) {
		stored := unpaidOrder()
		var markedResult *domain.PaymentResult
		notified := 0

		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				if markedResult != nil {
					paid := paidOrder(markedResult.PaymentID)
					return paid, nil
				}
				return stored, nil
			},
			markPaidFn: func(_ context.Context, _ string, result domain.PaymentResult, _ time.Time) error {
				markedResult = &result
				return nil
			},
		}
		notifier := &mockNotifier{
			paymentConfirmedFn: func(_ context.Context, _, _ string) error {
				notified++
				return nil
			},
		}

		handler := newConfirmHandler(repo, &mockGateway{}, &mockVerifier{}, notifier)

		order, err := handler.Handle(context.Background(), confirmCmd())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if !order.IsPaid {
			t.Error("expected order to be paid")
		}
		if markedResult == nil || markedResult.PaymentID != "pay_123" {
			t.Errorf("expected payment pay_123 recorded, got %+v", markedResult)
		}
		if markedResult.Status != ports.PaymentStatusCaptured {
			t.Errorf("expected captured status, got %q", markedResult.Status)
		}
		if notified != 1 {
			t.Errorf("expected exactly one notification, got %d", notified)
		}
	})

	t.Run("repeat confirmation with same payment is a silent no-op", func(t *testing.T) {
		marked := 0
		notified := 0
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return paidOrder("pay_123"), nil
			},
			markPaidFn: func(_ context.Context, _ string, _ domain.PaymentResult, _ time.Time) error {
				marked++
				return nil
			},
		}
		notifier := &mockNotifier{
			paymentConfirmedFn: func(_ context.Context, _, _ string) error {
				notified++
				return nil
			},
		}

		handler := newConfirmHandler(repo, &mockGateway{}, &mockVerifier{}, notifier)

		order, err := handler.Handle(context.Background(), confirmCmd())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !order.PaidWith("pay_123") {
			t.Error("expected order paid with pay_123")
		}
		if marked != 0 {
			t.Errorf("expected no second MarkPaid, got %d", marked)
		}
		if notified != 0 {
			t.Errorf("expected no second notification, got %d", notified)
		}
	})

	t.Run("rejects different payment for already paid order", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return paidOrder("pay_other"), nil
			},
		}

		handler := newConfirmHandler(repo, &mockGateway{}, &mockVerifier{}, &mockNotifier{})

		if _, err := handler.Handle(context.Background(), confirmCmd()); !errors.Is(err, ports.ErrAlreadyPaid) {
			t.Errorf("expected ErrAlreadyPaid, got %v", err)
		}
	})

	t.Run("rejects invalid signature", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return unpaidOrder(), nil
			},
		}
		verifier := &mockVerifier{
			verifyPaymentFn: func(_, _, _ string) bool { return false },
		}

		handler := newConfirmHandler(repo, &mockGateway{}, verifier, &mockNotifier{})

		if _, err := handler.Handle(context.Background(), confirmCmd()); !errors.Is(err, ports.ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("rejects payment the gateway reports as not captured", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return unpaidOrder(), nil
			},
		}
		gateway := &mockGateway{
			fetchPaymentFn: func(_ context.Context, paymentID string) (*ports.GatewayPayment, error) {
				return &ports.GatewayPayment{ID: paymentID, Status: "authorized"}, nil
			},
		}

		handler := newConfirmHandler(repo, gateway, &mockVerifier{}, &mockNotifier{})

		if _, err := handler.Handle(context.Background(), confirmCmd()); !errors.Is(err, ports.ErrPaymentRejected) {
			t.Errorf("expected ErrPaymentRejected, got %v", err)
		}
	})

	t.Run("skips gateway re-fetch when capture is trusted", func(t *testing.T) {
		fetched := 0
		repo := &mockRepository{
			getByGatewayOrderIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return unpaidOrder(), nil
			},
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return paidOrder("pay_123"), nil
			},
		}
		gateway := &mockGateway{
			fetchPaymentFn: func(_ context.Context, paymentID string) (*ports.GatewayPayment, error) {
				fetched++
				return &ports.GatewayPayment{ID: paymentID, Status: ports.PaymentStatusCaptured}, nil
			},
		}

		handler := newConfirmHandler(repo, gateway, &mockVerifier{}, &mockNotifier{})

		cmd := commands.ConfirmPaymentCommand{
			GatewayOrderID: "order_gw_1",
			PaymentID:      "pay_123",
			TrustCapture:   true,
		}
		if _, err := handler.Handle(context.Background(), cmd); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if fetched != 0 {
			t.Errorf("expected no gateway fetch, got %d", fetched)
		}
	})

	t.Run("losing the MarkPaid race with the same payment succeeds", func(t *testing.T) {
		calls := 0
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				calls++
				if calls == 1 {
					return unpaidOrder(), nil
				}
				return paidOrder("pay_123"), nil
			},
			markPaidFn: func(_ context.Context, _ string, _ domain.PaymentResult, _ time.Time) error {
				return ports.ErrAlreadyPaid
			},
		}

		handler := newConfirmHandler(repo, &mockGateway{}, &mockVerifier{}, &mockNotifier{})

		order, err := handler.Handle(context.Background(), confirmCmd())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !order.PaidWith("pay_123") {
			t.Error("expected the winning payment to be returned")
		}
	})

	t.Run("rejects confirmation from a different user", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return unpaidOrder(), nil
			},
		}

		handler := newConfirmHandler(repo, &mockGateway{}, &mockVerifier{}, &mockNotifier{})

		cmd := confirmCmd()
		cmd.RequesterID = "intruder"

		if _, err := handler.Handle(context.Background(), cmd); !errors.Is(err, ports.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("requires payment id", func(t *testing.T) {
		handler := newConfirmHandler(&mockRepository{}, &mockGateway{}, &mockVerifier{}, &mockNotifier{})

		cmd := confirmCmd()
		cmd.PaymentID = ""

		if _, err := handler.Handle(context.Background(), cmd); !errors.Is(err, ports.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
