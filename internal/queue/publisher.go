package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends activity events to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// AMQPPublisher publishes each event on its own short-lived connection.
// Event volume is low, so no connection is held between requests.
type AMQPPublisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher targeting ActivityQueue.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: ActivityQueue, DialTimeout: 2 * time.Second}
}

// Publish marshals ev and sends it as a persistent message through the
// default exchange, routed by queue name.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Dial: amqp.DefaultDial(p.DialTimeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// PublishAsync sends ev in the background so a slow or absent broker never
// delays the response. Failures are logged and otherwise ignored.
func PublishAsync(p Publisher, logger *slog.Logger, ev Event) {
	if p == nil {
		return
	}
	if _, ok := p.(NoopPublisher); ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil && logger != nil {
			logger.Warn("event publish failed", slog.String("type", ev.Type), slog.Any("error", err))
		}
	}()
}
