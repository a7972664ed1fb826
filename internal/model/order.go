package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a placed customer order. Everything except the payment
// fields and IsPaid is fixed at creation.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           string          `json:"userId" db:"user_id"`
	AddressID        *uuid.UUID      `json:"addressId,omitempty" db:"address_id"`
	TotalPrice       decimal.Decimal `json:"totalPrice" db:"total_price"`
	IsPaid           bool            `json:"isPaid" db:"is_paid"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UserOrderNumber  int             `json:"userOrderNumber" db:"user_order_number"`
	GatewayOrderID   *string         `json:"gatewayOrderId,omitempty" db:"gateway_order_id"`
	GatewayPaymentID *string         `json:"gatewayPaymentId,omitempty" db:"gateway_payment_id"`
	GatewaySignature *string         `json:"gatewaySignature,omitempty" db:"gateway_signature"`
	Items            []OrderItem     `json:"items"`
}

// OrderItem represents a line item in an order. Price is the unit price
// captured when the order was placed.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest represents the request payload for creating an order.
// TotalPrice is what the client displayed; it is never persisted.
type OrderRequest struct {
	AddressID  *uuid.UUID         `json:"addressId,omitempty"`
	TotalPrice *decimal.Decimal   `json:"totalPrice,omitempty"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest converts the caller's cart into an order.
type CheckoutRequest struct {
	AddressID *uuid.UUID `json:"addressId,omitempty"`
}

// Invoice is the printable summary of an order.
type Invoice struct {
	OrderID         uuid.UUID       `json:"orderId"`
	UserOrderNumber int             `json:"userOrderNumber"`
	OrderDate       string          `json:"orderDate"`
	Lines           []InvoiceLine   `json:"lines"`
	Total           decimal.Decimal `json:"total"`
	IsPaid          bool            `json:"isPaid"`
	PaymentID       *string         `json:"paymentId,omitempty"`
}

// InvoiceLine is one row of an invoice.
type InvoiceLine struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
