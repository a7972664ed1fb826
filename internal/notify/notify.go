// Package notify sends order confirmations outside the request path.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"simpleshop/internal/model"
	"simpleshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Dispatcher delivers a confirmation for one order to one recipient.
type Dispatcher interface {
	SendOrderConfirmation(ctx context.Context, email string, order *model.Order) error
}

// OrderConfirmation is the message handed to the mail worker.
type OrderConfirmation struct {
	Email           string             `json:"email"`
	OrderID         uuid.UUID          `json:"orderId"`
	UserOrderNumber int                `json:"userOrderNumber"`
	Total           decimal.Decimal    `json:"total"`
	CreatedAt       time.Time          `json:"createdAt"`
	Lines           []ConfirmationLine `json:"lines"`
}

// ConfirmationLine is one purchased product.
type ConfirmationLine struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// NewOrderConfirmation builds the message body for order.
func NewOrderConfirmation(email string, order *model.Order) OrderConfirmation {
	msg := OrderConfirmation{
		Email:           email,
		OrderID:         order.ID,
		UserOrderNumber: order.UserOrderNumber,
		Total:           order.TotalPrice,
		CreatedAt:       order.CreatedAt,
		Lines:           make([]ConfirmationLine, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		msg.Lines = append(msg.Lines, ConfirmationLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return msg
}

// Async hands committed orders to a Dispatcher on a background goroutine.
// Failures are logged and never reach the caller.
type Async struct {
	users      repository.UserRepository
	dispatcher Dispatcher
	timeout    time.Duration
	logger     zerolog.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewAsync creates an asynchronous notifier. Each send gets its own timeout.
func NewAsync(users repository.UserRepository, dispatcher Dispatcher, timeout time.Duration, logger zerolog.Logger) *Async {
	return &Async{
		users:      users,
		dispatcher: dispatcher,
		timeout:    timeout,
		logger:     logger.With().Str("component", "notifier").Logger(),
	}
}

// OrderPlaced schedules a confirmation for order. It returns immediately.
func (a *Async) OrderPlaced(order *model.Order) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn().Str("order_id", order.ID.String()).Msg("notifier closed, confirmation dropped")
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.send(ctx, order); err != nil {
			a.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("user_id", order.UserID).
				Msg("order confirmation failed")
		}
	}()
}

func (a *Async) send(ctx context.Context, order *model.Order) error {
	user, err := a.users.GetByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up recipient: %w", err)
	}

	if err := a.dispatcher.SendOrderConfirmation(ctx, user.Email, order); err != nil {
		return fmt.Errorf("failed to dispatch confirmation: %w", err)
	}

	a.logger.Info().
		Str("order_id", order.ID.String()).
		Int("user_order_number", order.UserOrderNumber).
		Msg("order confirmation sent")

	return nil
}

// Close stops accepting new orders and waits for in-flight sends, or until
// ctx is done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifier shutdown: %w", ctx.Err())
	}
}

// LogDispatcher only writes the confirmation to the log. It is used when no
// broker is configured.
type LogDispatcher struct {
	logger zerolog.Logger
}

// NewLogDispatcher creates a dispatcher that logs confirmations at info.
func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.With().Str("component", "log_dispatcher").Logger()}
}

func (d *LogDispatcher) SendOrderConfirmation(_ context.Context, email string, order *model.Order) error {
	d.logger.Info().
		Str("email", email).
		Str("order_id", order.ID.String()).
		Int("user_order_number", order.UserOrderNumber).
		Str("total", order.TotalPrice.StringFixed(2)).
		Int("lines", len(order.Items)).
		Msg("order confirmation")
	return nil
}
