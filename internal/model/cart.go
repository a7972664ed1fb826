package model

import "time"

// CartItem is a single (user, product) entry in a shopping cart.
type CartItem struct {
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"addedAt,omitempty" db:"added_at"`
	Product   *Product  `json:"product,omitempty"`
}

// CartItemRequest represents the payload for adding to a cart.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
