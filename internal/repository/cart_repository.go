package repository

import (
	"context"
	"fmt"

	"simpleshop/internal/model"

	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository on the cart_items table.
type cartRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(db DB, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		db:     db,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Add inserts the entry or increments its quantity. The primary key on
// (user_id, product_id) keeps one entry per pair under concurrent adds.
func (r *cartRepository) Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING user_id, product_id, quantity, added_at
	`

	var item model.CartItem
	err := r.db.QueryRow(ctx, query, userID, productID, quantity).
		Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if err != nil {
		if isForeignKeyViolation(err, "cart_items_product_id_fkey") {
			r.logger.Debug().Str("user_id", userID).Str("product_id", productID).Msg("cart add for unknown product")
			return nil, model.ErrUnknownProduct
		}
		if isUnknownUser(err) {
			r.logger.Debug().Str("user_id", userID).Msg("cart add for unknown user")
			return nil, model.ErrUnknownUser
		}
		if isOutOfRange(err) {
			r.logger.Debug().Str("user_id", userID).Str("product_id", productID).Msg("cart quantity out of range")
			return nil, model.ErrInvalidQuantity.WithFields(map[string]string{"quantity": "cart quantity too large"})
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return &item, nil
}

// Remove deletes the entry if present.
func (r *cartRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// List returns the user's entries, oldest first.
func (r *cartRepository) List(ctx context.Context, userID string) ([]model.CartItem, error) {
	query := `
		SELECT user_id, product_id, quantity, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Clear removes every entry for the user.
func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().Str("user_id", userID).Int64("removed", tag.RowsAffected()).Msg("cart cleared")

	return nil
}
