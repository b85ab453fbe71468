// Package events publishes booking events to the notifications exchange.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
)

// Publisher sends BookingEvents routed by their type.
type Publisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher returns a Publisher on a channel prepared by rabbitmq.SetupChannel.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish sends event with its Type as routing key.
func (p *Publisher) Publish(ctx context.Context, event models.BookingEvent) error {
	const op = "events.Publish"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	msg := rabbitmq.Message{ID: event.EventID, RoutingKey: event.Type, Payload: event}
	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.ExchangeNotifications, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, models.BookingEvent) error { return nil }
