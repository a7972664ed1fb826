package service

import (
	"context"
	"errors"
	"fmt"

	"simpleshop/internal/model"
	"simpleshop/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// AddItem adds quantity of a product to the cart, merging with an existing
// entry for the same product.
func (s *cartService) AddItem(ctx context.Context, userID string, req *model.CartItemRequest) (*model.CartItem, error) {
	if req == nil || req.ProductID == "" {
		return nil, model.ErrMissingField.WithFields(map[string]string{"productId": "is required"})
	}
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity.WithFields(map[string]string{"quantity": "must be at least 1"})
	}
	if req.Quantity > maxQuantity {
		return nil, model.ErrInvalidQuantity.WithFields(map[string]string{"quantity": fmt.Sprintf("must be at most %d", maxQuantity)})
	}

	// The Redis backend has no foreign key, so existence is checked here for
	// both.
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Str("product_id", req.ProductID).Msg("cannot add unknown product")
			return nil, model.ErrUnknownProduct.WithFields(map[string]string{"productId": "unknown product " + req.ProductID})
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	item, err := s.cartRepo.Add(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	item.Product = product

	s.logger.Debug().
		Str("user_id", userID).
		Str("product_id", req.ProductID).
		Int("quantity", item.Quantity).
		Msg("cart updated")

	return item, nil
}

// RemoveItem removes a product from the cart. Absent products are ignored.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return model.ErrMissingField.WithFields(map[string]string{"productId": "is required"})
	}
	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

// ListItems returns the cart with current product details attached. Entries
// whose product has left the catalogue are returned without details.
func (s *cartService) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	if len(items) == 0 {
		return []model.CartItem{}, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}

	return items, nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
