package service

import (
	"context"

	"simpleshop/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue read operations.
type ProductService interface {
	// List retrieves products matching filter with pagination.
	List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Brands returns the distinct brands in the catalogue.
	Brands(ctx context.Context) ([]string, error)
}

// OrderService defines checkout and order history operations.
type OrderService interface {
	// CreateOrder prices the requested items from the catalogue and places
	// the order under the user's next order number.
	CreateOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error)

	// CheckoutCart places an order for everything in the user's cart and
	// then empties the cart.
	CheckoutCart(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.Order, error)

	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)

	// GetOrder returns one of the user's orders.
	GetOrder(ctx context.Context, userID string, id uuid.UUID) (*model.Order, error)

	// Invoice returns the printable summary of one of the user's orders.
	Invoice(ctx context.Context, userID string, id uuid.UUID) (*model.Invoice, error)
}

// PaymentService reconciles orders with the payment gateway.
type PaymentService interface {
	// InitiatePayment opens a gateway order for an unpaid order.
	InitiatePayment(ctx context.Context, userID string, req *model.PaymentIntentRequest) (*model.PaymentIntent, error)

	// ConfirmPayment verifies the gateway signature and marks the order paid.
	ConfirmPayment(ctx context.Context, userID string, req *model.PaymentConfirmation) (*model.Order, error)
}

// CartService manages a user's shopping cart.
type CartService interface {
	AddItem(ctx context.Context, userID string, req *model.CartItemRequest) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID string) error

	// ListItems returns the cart with current product details attached.
	ListItems(ctx context.Context, userID string) ([]model.CartItem, error)

	Clear(ctx context.Context, userID string) error
}

// AddressService manages a user's address book.
type AddressService interface {
	Create(ctx context.Context, userID string, address *model.Address) (*model.Address, error)
	List(ctx context.Context, userID string) ([]model.Address, error)

	// Get returns one of the user's addresses; other users' addresses are not found.
	Get(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error)

	// Update replaces the fields of one of the user's addresses.
	Update(ctx context.Context, userID string, id uuid.UUID, address *model.Address) (*model.Address, error)

	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// OrderNotifier is told about every committed order. It must not block.
type OrderNotifier interface {
	OrderPlaced(order *model.Order)
}
