package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"simpleshop/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 3 * time.Second

// Publisher puts confirmations on a durable RabbitMQ queue for the mail worker.
type Publisher struct {
	conn   *amqp.Connection
	queue  string
	logger zerolog.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher dials url and declares queue so publishing never fails due to
// missing infrastructure.
func NewPublisher(url, queue string, logger zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare %s: %w", queue, err)
	}

	return &Publisher{
		conn:   conn,
		ch:     ch,
		queue:  queue,
		logger: logger.With().Str("component", "rabbitmq_publisher").Str("queue", queue).Logger(),
	}, nil
}

// SendOrderConfirmation publishes a persistent JSON message.
func (p *Publisher) SendOrderConfirmation(ctx context.Context, email string, order *model.Order) error {
	body, err := json.Marshal(NewOrderConfirmation(email, order))
	if err != nil {
		return fmt.Errorf("marshal order confirmation: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		pubCtx,
		"",      // default exchange
		p.queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    order.ID.String(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish order confirmation: %w", err)
	}

	p.logger.Debug().Str("order_id", order.ID.String()).Msg("order confirmation published")

	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	return p.conn.Close()
}
