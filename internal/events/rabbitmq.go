package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Dial connects to RabbitMQ, retrying while the broker starts up.
func Dial(url string, attempts int, logger *zap.Logger) (*amqp091.Connection, error) {
	var lastErr error
	delay := time.Second
	for i := 1; i <= attempts; i++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			return conn, nil
		}
		lastErr = err
		logger.Warn("RabbitMQ connection failed, retrying",
			zap.Int("attempt", i),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
		delay *= 2
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

// RabbitPublisher publishes events to a durable topic exchange, routed by event type.
type RabbitPublisher struct {
	ch       *amqp091.Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewRabbitPublisher(conn *amqp091.Connection, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	logger.Info("Event exchange declared", zap.String("exchange", exchange))
	return &RabbitPublisher{ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("type", event.Type), zap.Error(err))
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", zap.String("type", event.Type), zap.Int64("story_id", event.StoryID))
	return nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, event Event) error

// Consumer binds a durable queue to the event exchange and feeds a Handler.
type Consumer struct {
	ch          *amqp091.Channel
	queue       string
	consumerTag string
	handler     Handler
	logger      *zap.Logger
	done        chan struct{}
}

func NewConsumer(conn *amqp091.Connection, exchange, queue string, routingKeys []string, handler Handler, logger *zap.Logger) (*Consumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("event handler is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queue, err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("failed to bind queue '%s' to '%s': %w", q.Name, key, err)
		}
	}

	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	tag := fmt.Sprintf("%s_%d", queue, time.Now().UnixNano())
	return &Consumer{
		ch:          ch,
		queue:       q.Name,
		consumerTag: tag,
		handler:     handler,
		logger:      logger.With(zap.String("queue", q.Name)),
		done:        make(chan struct{}),
	}, nil
}

// Start registers the consumer and processes deliveries until ctx is cancelled
// or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, c.consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("Consuming content events")
	go func() {
		defer close(c.done)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					c.logger.Warn("Delivery channel closed")
					return
				}
				c.process(ctx, d)
			}
		}
	}()
	return nil
}

func (c *Consumer) process(ctx context.Context, d amqp091.Delivery) {
	if err := c.Handle(ctx, d.Body); err != nil {
		c.logger.Error("Failed to handle event", zap.Error(err), zap.ByteString("body", d.Body))
		// malformed or failing events are dropped rather than redelivered forever
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		c.logger.Error("Failed to acknowledge message", zap.Error(err))
	}
}

// Handle decodes body and runs the handler.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	event, err := decode(body)
	if err != nil {
		return err
	}
	return c.handler(ctx, event)
}

// Stop cancels the subscription and waits for the delivery loop to exit.
func (c *Consumer) Stop() {
	if err := c.ch.Cancel(c.consumerTag, false); err != nil {
		c.logger.Warn("Failed to cancel consumer", zap.Error(err))
	}
	<-c.done
	_ = c.ch.Close()
}
