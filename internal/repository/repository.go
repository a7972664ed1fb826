package repository

import (
	"context"

	"simpleshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// List retrieves products matching filter with pagination support.
	List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product. Returns model.ErrProductNotFound when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves the products that exist among ids in a single query.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Brands returns the distinct brands present in the catalogue, sorted.
	Brands(ctx context.Context) ([]string, error)

	// Upsert inserts or replaces catalogue rows and returns how many were written.
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns model.ErrOrderNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders newest first, with items.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// SetGatewayOrderID records the gateway reference on an unpaid order.
	// Returns false when the order is already paid or does not belong to userID.
	SetGatewayOrderID(ctx context.Context, id uuid.UUID, userID, gatewayOrderID string) (bool, error)

	// MarkPaid flips is_paid for an unpaid order carrying gatewayOrderID.
	// Returns false when no row matched.
	MarkPaid(ctx context.Context, id uuid.UUID, gatewayOrderID, paymentID, signature string) (bool, error)
}

// OrderSequencer hands out per-user order numbers 1, 2, 3...
type OrderSequencer interface {
	// Next increments and returns the user's order number inside tx. The
	// number is only consumed if tx commits.
	Next(ctx context.Context, tx pgx.Tx, userID string) (int, error)
}

// CartRepository stores one entry per (user, product).
type CartRepository interface {
	// Add inserts the entry or increments its quantity and returns the result.
	Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)

	// Remove deletes the entry. Removing an absent entry is not an error.
	Remove(ctx context.Context, userID, productID string) error

	// List returns the user's entries, oldest first.
	List(ctx context.Context, userID string) ([]model.CartItem, error)

	// Clear removes every entry for the user.
	Clear(ctx context.Context, userID string) error
}

// AddressRepository defines address book data access operations.
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error

	// GetByID returns model.ErrAddressNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)

	ListByUser(ctx context.Context, userID string) ([]model.Address, error)

	// Update replaces the editable fields of an address owned by
	// address.UserID. Returns model.ErrAddressNotFound otherwise.
	Update(ctx context.Context, address *model.Address) error

	// Delete removes the user's address. Returns model.ErrAddressNotFound when
	// no address with that id belongs to the user.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// UserRepository reads accounts owned by the external auth service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}
