package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"

	"todo/internal/logger"
)

const (
	// DefaultExchange is the topic exchange domain events are published to.
	DefaultExchange = "todo.events"
	// DefaultQueue receives every event published to DefaultExchange.
	DefaultQueue = "todo.activity"
)

var errNoChannel = errors.New("RabbitMQ channel is not available")

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// Event is the envelope every published message carries.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string

	// amqp.Channel must not be published to concurrently.
	mu sync.Mutex
}

// NewClient connects to RabbitMQ, declares the durable topic exchange and the
// activity queue, and binds the queue to every routing key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", "exchange", cfg.Exchange, "queue", cfg.Queue)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, "#", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewEvent wraps data in an envelope with a fresh id and timestamp.
func NewEvent(eventType string, data any) (Event, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s event data: %w", eventType, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       body,
	}, nil
}

// PublishEvent publishes data to the exchange under routingKey. The routing
// key doubles as the event type.
func (c *Client) PublishEvent(routingKey string, data any) error {
	if c.channel == nil {
		return errNoChannel
	}

	event, err := NewEvent(routingKey, data)
	if err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		c.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	logger.Info("event published", "event", routingKey, "event_id", event.ID)
	return nil
}

// ConsumeEvents delivers every message on the activity queue to handler in a
// background goroutine. Messages are acked when handler succeeds. Undecodable
// messages are dropped and failed ones are requeued.
func (c *Client) ConsumeEvents(handler func(Event) error) error {
	if c.channel == nil {
		return errNoChannel
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Info("waiting for events", "queue", c.queue)

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()
	return nil
}

// acknowledger is the part of amqp.Delivery handleDelivery settles through.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(Event) error) {
	settle(msg.Body, msg.DeliveryTag, msg, handler)
}

func settle(body []byte, tag uint64, ack acknowledger, handler func(Event) error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warn("dropping malformed event", "delivery_tag", tag, "error", err)
		if err := ack.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "delivery_tag", tag, "error", err)
		}
		return
	}

	if err := handler(event); err != nil {
		logger.Warn("event handler failed", "event", event.Type, "event_id", event.ID, "error", err)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "delivery_tag", tag, "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("failed to ack message", "delivery_tag", tag, "error", err)
	}
}

// LogActivity records a consumed event in the activity log.
func LogActivity(event Event) error {
	logger.Info("activity",
		"event", event.Type,
		"event_id", event.ID,
		"occurred_at", event.OccurredAt.Format(time.RFC3339),
		"data", string(event.Data),
	)
	return nil
}
