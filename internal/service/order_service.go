package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"simpleshop/internal/model"
	"simpleshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const invoiceDateLayout = "02 Jan 2006"

// Column bounds: quantities are INTEGER, totals NUMERIC(10,2).
const maxQuantity = math.MaxInt32

var maxOrderTotal = decimal.RequireFromString("99999999.99")

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	sequencer   repository.OrderSequencer
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	cartRepo    repository.CartRepository
	notifier    OrderNotifier
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. notifier may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	sequencer repository.OrderSequencer,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	cartRepo repository.CartRepository,
	notifier OrderNotifier,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		sequencer:   sequencer,
		productRepo: productRepo,
		addressRepo: addressRepo,
		cartRepo:    cartRepo,
		notifier:    notifier,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder prices the requested items from the catalogue and places the
// order under the user's next order number. Nothing is written unless every
// product exists.
func (s *orderService) CreateOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	if req.AddressID != nil {
		if err := s.checkAddress(ctx, userID, *req.AddressID); err != nil {
			return nil, err
		}
	}

	items, total, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if req.TotalPrice != nil && !req.TotalPrice.Equal(total) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("client_total", req.TotalPrice.StringFixed(2)).
			Str("total", total.StringFixed(2)).
			Msg("client total differs from catalogue prices, using catalogue")
	}

	order := &model.Order{
		ID:         uuid.New(),
		UserID:     userID,
		AddressID:  req.AddressID,
		TotalPrice: total,
		CreatedAt:  time.Now().UTC(),
		Items:      items,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if err := s.placeOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID).
		Int("user_order_number", order.UserOrderNumber).
		Int("item_count", len(order.Items)).
		Str("total", order.TotalPrice.StringFixed(2)).
		Msg("order created successfully")

	if s.notifier != nil {
		s.notifier.OrderPlaced(order)
	}

	return order, nil
}

// placeOrder writes the order and its items in one transaction. The order
// number is drawn inside the same transaction so a rollback gives it back.
func (s *orderService) placeOrder(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order.UserOrderNumber, err = s.sequencer.Next(ctx, tx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to assign order number: %w", err)
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// CheckoutCart places an order for the user's cart and then empties it.
// Clearing is best effort: the order already exists when it runs.
func (s *orderService) CheckoutCart(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.Order, error) {
	entries, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(entries) == 0 {
		return nil, model.ErrEmptyCart
	}

	orderReq := &model.OrderRequest{Items: make([]model.OrderItemRequest, len(entries))}
	if req != nil {
		orderReq.AddressID = req.AddressID
	}
	for i, e := range entries {
		orderReq.Items[i] = model.OrderItemRequest{ProductID: e.ProductID, Quantity: e.Quantity}
	}

	order, err := s.CreateOrder(ctx, userID, orderReq)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.Clear(context.WithoutCancel(ctx), userID); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("order_id", order.ID.String()).
			Msg("order placed but cart could not be cleared")
	}

	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *orderService) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Other users' orders are
// reported as not found.
func (s *orderService) GetOrder(ctx context.Context, userID string, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID != userID {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("user_id", userID).
			Msg("order belongs to another user")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// Invoice returns the printable summary of one of the user's orders.
func (s *orderService) Invoice(ctx context.Context, userID string, id uuid.UUID) (*model.Invoice, error) {
	order, err := s.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	inv := &model.Invoice{
		OrderID:         order.ID,
		UserOrderNumber: order.UserOrderNumber,
		OrderDate:       order.CreatedAt.Format(invoiceDateLayout),
		Lines:           make([]model.InvoiceLine, 0, len(order.Items)),
		Total:           order.TotalPrice,
		IsPaid:          order.IsPaid,
		PaymentID:       order.GatewayPaymentID,
	}
	for _, item := range order.Items {
		inv.Lines = append(inv.Lines, model.InvoiceLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    item.Subtotal(),
		})
	}

	return inv, nil
}

func (s *orderService) checkAddress(ctx context.Context, userID string, id uuid.UUID) error {
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrAddressNotFound) {
			return model.ErrInvalidAddress
		}
		return fmt.Errorf("failed to check address: %w", err)
	}

	if address.UserID != userID {
		s.logger.Warn().
			Str("address_id", id.String()).
			Str("user_id", userID).
			Msg("address belongs to another user")
		return model.ErrInvalidAddress
	}

	return nil
}

// priceItems snapshots the current name and price of every requested product
// and returns the order lines with their total.
func (s *orderService) priceItems(ctx context.Context, reqItems []model.OrderItemRequest) ([]model.OrderItem, decimal.Decimal, error) {
	ids := make([]string, 0, len(reqItems))
	seen := make(map[string]bool, len(reqItems))
	for _, item := range reqItems {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	fields := map[string]string{}
	for i, item := range reqItems {
		if _, ok := byID[item.ProductID]; !ok {
			missing = append(missing, item.ProductID)
			fields[fmt.Sprintf("items[%d].productId", i)] = "unknown product " + item.ProductID
		}
	}
	if len(missing) > 0 {
		s.logger.Warn().
			Str("product_ids", strings.Join(missing, ",")).
			Msg("order references unknown products")
		return nil, decimal.Zero, model.ErrUnknownProduct.WithFields(fields)
	}

	total := decimal.Zero
	items := make([]model.OrderItem, len(reqItems))
	for i, item := range reqItems {
		p := byID[item.ProductID]
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			Price:       p.Price,
		}
		total = total.Add(items[i].Subtotal())
	}

	if total.GreaterThan(maxOrderTotal) {
		s.logger.Warn().
			Str("total", total.StringFixed(2)).
			Msg("order total out of range")
		return nil, decimal.Zero, model.ErrOrderTooLarge.WithFields(map[string]string{
			"items": "order total must be at most " + maxOrderTotal.StringFixed(2),
		})
	}

	return items, total, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	missing := map[string]string{}
	quantities := map[string]string{}
	for i, item := range req.Items {
		if item.ProductID == "" {
			missing[fmt.Sprintf("items[%d].productId", i)] = "is required"
		}

		switch {
		case item.Quantity <= 0:
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			quantities[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		case item.Quantity > maxQuantity:
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("quantity out of range")
			quantities[fmt.Sprintf("items[%d].quantity", i)] = fmt.Sprintf("must be at most %d", maxQuantity)
		}
	}

	if len(missing) > 0 {
		return model.ErrMissingField.WithFields(missing)
	}
	if len(quantities) > 0 {
		return model.ErrInvalidQuantity.WithFields(quantities)
	}

	return nil
}
