package service

import (
	"context"
	"fmt"
	"strings"

	"simpleshop/internal/model"
	"simpleshop/internal/payment"
	"simpleshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo repository.OrderRepository
	gateway   payment.Gateway
	currency  string
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment service charging in currency.
func NewPaymentService(orderRepo repository.OrderRepository, gateway payment.Gateway, currency string, logger zerolog.Logger) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		gateway:   gateway,
		currency:  currency,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

// InitiatePayment opens a gateway order for an unpaid order. The amount must
// equal the order total in minor units. The gateway is called outside any
// transaction; its reference then replaces whatever the order carried.
func (s *paymentService) InitiatePayment(ctx context.Context, userID string, req *model.PaymentIntentRequest) (*model.PaymentIntent, error) {
	if req == nil || req.OrderID == uuid.Nil {
		return nil, model.ErrMissingField.WithFields(map[string]string{"orderId": "is required"})
	}

	amount, ok := payment.ParseAmount(req.Amount)
	if !ok {
		return nil, model.ErrInvalidAmount
	}

	order, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		return nil, model.ErrAlreadyPaid
	}

	if expected := payment.MinorUnits(order.TotalPrice); amount != expected {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Int64("amount", amount).
			Int64("expected", expected).
			Msg("payment amount does not match order total")
		return nil, model.ErrAmountMismatch
	}

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, amount, s.currency, order.ID.String())
	if err != nil {
		if payment.IsUnavailable(err) {
			s.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("payment gateway unavailable")
		} else {
			s.logger.Warn().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("payment gateway rejected order")
		}
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	updated, err := s.orderRepo.SetGatewayOrderID(ctx, order.ID, userID, gatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}
	if !updated {
		// Paid between the read above and the update.
		return nil, model.ErrAlreadyPaid
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("gateway_order_id", gatewayOrderID).
		Int64("amount", amount).
		Msg("payment initiated")

	return &model.PaymentIntent{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       s.currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// ConfirmPayment verifies the gateway signature and marks the order paid.
// Confirming again with the same references returns the paid order.
func (s *paymentService) ConfirmPayment(ctx context.Context, userID string, req *model.PaymentConfirmation) (*model.Order, error) {
	if err := validateConfirmation(req); err != nil {
		return nil, err
	}

	order, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		return s.alreadyPaid(order, req)
	}

	if order.GatewayOrderID == nil {
		return nil, model.ErrPaymentNotInitiated
	}
	gatewayOrderID := *order.GatewayOrderID

	if !s.gateway.VerifySignature(gatewayOrderID, req.PaymentID, req.Signature) {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("user_id", userID).
			Str("payment_id", req.PaymentID).
			Msg("payment signature verification failed")
		return nil, model.ErrSignatureInvalid
	}

	updated, err := s.orderRepo.MarkPaid(ctx, order.ID, gatewayOrderID, req.PaymentID, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	if !updated {
		// Lost a race with another confirmation or a new payment intent.
		current, err := s.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm payment: %w", err)
		}
		if current.IsPaid {
			return s.alreadyPaid(current, req)
		}
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("user_id", userID).
			Msg("gateway order replaced during confirmation")
		return nil, model.ErrSignatureInvalid
	}

	order.IsPaid = true
	order.GatewayPaymentID = &req.PaymentID
	order.GatewaySignature = &req.Signature

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", req.PaymentID).
		Msg("payment confirmed")

	return order, nil
}

func (s *paymentService) alreadyPaid(order *model.Order, req *model.PaymentConfirmation) (*model.Order, error) {
	if order.GatewayPaymentID != nil && *order.GatewayPaymentID == req.PaymentID &&
		order.GatewaySignature != nil && strings.EqualFold(*order.GatewaySignature, req.Signature) {
		s.logger.Debug().Str("order_id", order.ID.String()).Msg("payment already confirmed")
		return order, nil
	}

	s.logger.Warn().
		Str("order_id", order.ID.String()).
		Str("payment_id", req.PaymentID).
		Msg("order already paid with a different payment")
	return nil, model.ErrAlreadyPaid
}

func (s *paymentService) ownedOrder(ctx context.Context, userID string, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func validateConfirmation(req *model.PaymentConfirmation) error {
	if req == nil {
		req = &model.PaymentConfirmation{}
	}

	fields := map[string]string{}
	if req.OrderID == uuid.Nil {
		fields["orderId"] = "is required"
	}
	if req.PaymentID == "" {
		fields["paymentId"] = "is required"
	}
	if req.Signature == "" {
		fields["signature"] = "is required"
	}

	if len(fields) > 0 {
		return model.ErrMissingField.WithFields(fields)
	}
	return nil
}
