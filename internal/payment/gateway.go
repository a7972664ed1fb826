// Package payment talks to the hosted payment gateway: opening gateway
// orders and verifying the signature returned by the checkout widget.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Gateway is the subset of the payment provider the service relies on.
type Gateway interface {
	// CreateOrder opens a gateway order for amount minor units and returns
	// its reference.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)

	// VerifySignature checks the signature the gateway issued for a payment.
	VerifySignature(gatewayOrderID, paymentID, signature string) bool

	// KeyID is the public key the client needs to open the checkout widget.
	KeyID() string
}

// Sign computes hex(HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID)).
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify compares in constant time.
func verify(secret, gatewayOrderID, paymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// ParseAmount converts a JSON number into minor units. ok is false for
// anything that is not a positive integer.
func ParseAmount(n json.Number) (amount int64, ok bool) {
	amount, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// MinorUnits converts a two-decimal price into integer minor units.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}
