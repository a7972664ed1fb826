package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// PaymentIntentRequest asks the gateway to open a charge for an order.
// Amount is kept as a raw JSON number so fractional values can be rejected.
type PaymentIntentRequest struct {
	OrderID uuid.UUID   `json:"orderId"`
	Amount  json.Number `json:"amount"`
}

// PaymentIntent is returned to the client to open the gateway checkout.
type PaymentIntent struct {
	OrderID        uuid.UUID `json:"orderId"`
	GatewayOrderID string    `json:"gatewayOrderId"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"key"`
}

// PaymentConfirmation carries the gateway callback fields.
type PaymentConfirmation struct {
	OrderID   uuid.UUID `json:"orderId"`
	PaymentID string    `json:"paymentId"`
	Signature string    `json:"signature"`
}
