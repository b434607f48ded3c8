package ports

import "context"

// PaymentStatusCaptured is the gateway status an order payment must
// reach before it is applied here.
const PaymentStatusCaptured = "captured"

// PaymentIntent is a remote payment created at the gateway for an
// order's total, denominated in integer minor units.
type PaymentIntent struct {
	ID          string
	AmountMinor int64
	Currency    string
}

// GatewayPayment is the gateway's authoritative record of a payment.
type GatewayPayment struct {
	ID          string
	OrderID     string
	Status      string
	Method      string
	AmountMinor int64
}

// GatewayRefund is the gateway's record of an issued refund.
type GatewayRefund struct {
	ID          string
	Status      string
	AmountMinor int64
}

// PaymentGateway is the narrow contract this core depends on. The
// gateway's own ledger is out of scope.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, receipt string, amountMinor int64, currency string) (*PaymentIntent, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
	CreateRefund(ctx context.Context, paymentID string, amountMinor int64) (*GatewayRefund, error)
}

// SignatureVerifier authenticates client-supplied payment confirmations
// and gateway-pushed webhook bodies under the shared HMAC secrets.
type SignatureVerifier interface {
	// VerifyPaymentSignature checks the client confirmation signature
	// computed over gatewayOrderID|paymentID.
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool

	// VerifyWebhook checks the hex HMAC of the raw webhook body.
	VerifyWebhook(body []byte, signature string) bool
}
