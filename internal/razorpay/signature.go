package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier authenticates client payment confirmations and webhook
// payloads with the gateway's shared secrets. The client confirmation
// signature is HMAC-SHA256 over "<gateway order id>|<payment id>" under
// the API key secret; the webhook signature is HMAC-SHA256 over the raw
// request body under the dedicated webhook secret.
type Verifier struct {
	keySecret     []byte
	webhookSecret []byte
}

// NewVerifier builds a Verifier for the given secrets.
func NewVerifier(keySecret, webhookSecret string) *Verifier {
	return &Verifier{
		keySecret:     []byte(keySecret),
		webhookSecret: []byte(webhookSecret),
	}
}

// VerifyPaymentSignature checks a client-supplied confirmation
// signature. This is the anti-forgery guarantee that a client cannot
// self-report a payment as captured.
func (v *Verifier) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	expected := signHex(v.keySecret, []byte(gatewayOrderID+"|"+paymentID))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhook checks the hex HMAC header against the raw body.
func (v *Verifier) VerifyWebhook(body []byte, signature string) bool {
	expected := signHex(v.webhookSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func signHex(secret, message []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign computes the hex HMAC-SHA256 of message under secret. Exported
// for tests and tooling that need to forge valid signatures.
func Sign(secret string, message []byte) string {
	return signHex([]byte(secret), message)
}
