package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"animov/pkg/config"
	"animov/pkg/logger"
	"animov/pkg/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsQueueName = "animov.events"
	EventsExchange  = "animov"
	eventsRouting   = "user_event"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func URL(cfg *config.Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		EventsExchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		EventsQueueName, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		EventsQueueName, // queue name
		eventsRouting,   // routing key
		EventsExchange,  // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publish sends a persistent event to the events queue.
func (c *Client) Publish(event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := Encode(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}

	err = c.channel.Publish(
		EventsExchange, // exchange
		eventsRouting,  // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(event.Type),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		c.logger.Error("[RABBITMQ] Failed to publish %s event: %v", event.Type, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	c.logger.Debug("[RABBITMQ] Published %s event for recipient=%s", event.Type, event.RecipientID)
	return nil
}

// Consume registers handler for the events queue and dispatches deliveries
// in a background goroutine. Undecodable messages are dropped; handler
// failures are requeued.
func (c *Client) Consume(handler func(Event) error) error {
	msgs, err := c.channel.Consume(
		EventsQueueName, // queue
		"",              // consumer
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", EventsQueueName)

	go func() {
		for msg := range msgs {
			event, err := Decode(msg.Body)
			if err != nil {
				c.logger.Error("[RABBITMQ] Dropping malformed event: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false)
				continue
			}

			if err := handler(event); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for %s event: %v", event.Type, err)
				msg.Nack(false, true)
				continue
			}
			msg.Ack(false)
		}
		c.logger.Warn("[RABBITMQ] Delivery channel closed for queue: %s", EventsQueueName)
	}()

	return nil
}

// QueueLength returns the number of messages waiting in the events queue.
func (c *Client) QueueLength() (int, error) {
	q, err := c.channel.QueueInspect(EventsQueueName)
	if err != nil {
		return 0, err
	}
	return q.Messages, nil
}

func Encode(event Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}
