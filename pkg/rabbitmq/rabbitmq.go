// Package rabbitmq carries order lifecycle events to back-office consumers
// (fulfillment, mail). Publishing is best-effort from the workflow's point of
// view: a broker outage must never fail a checkout or a reconciliation.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// OrderQueue is the durable queue order lifecycle events land on.
const OrderQueue = "order_events"

// Routing keys for order lifecycle events.
const (
	OrderCreated = "order.created"
	OrderPaid    = "order.paid"
)

// OrderEvent is the message body for order lifecycle events.
type OrderEvent struct {
	Event       string `json:"event"`
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the order
// event queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareOrderQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, %s declared", OrderQueue)
	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the RabbitMQ channel and connection.
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
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishOrderEvent publishes one order lifecycle event to the order queue.
func (c *Client) PublishOrderEvent(event OrderEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = c.channel.Publish(
		"",         // exchange: default
		OrderQueue, // routing key: the queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Event, err)
	}
	return nil
}

// ConsumeOrderEvents registers a consumer on the order queue and processes
// deliveries with the given handler. A handler error nacks the message for
// redelivery; success acks it.
func (c *Client) ConsumeOrderEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareOrderQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack: manual acknowledgement
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				log.Printf("Error processing order event %d: %v", msg.DeliveryTag, err)
				if nackErr := msg.Nack(false, true); nackErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}

func declareOrderQueue(ch *amqp.Channel) (amqp.Queue, error) {
	queue, err := ch.QueueDeclare(
		OrderQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}
	return queue, nil
}
