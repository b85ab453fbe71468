package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/beauty-booking/internal/models"
)

// ExchangeNotifications is the direct exchange booking events are published to.
const ExchangeNotifications = "notifications"

// QueueConfig binds a durable queue to a routing key on the notifications exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetBookingQueues returns the queues consumed by the notification sender.
func GetBookingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.booking.created", RoutingKey: models.EventBookingCreated},
		{QueueName: "notification.booking.status_changed", RoutingKey: models.EventBookingStatusChanged},
		{QueueName: "notification.booking.reminder", RoutingKey: models.EventBookingReminder},
	}
}

// SetupChannel opens a channel, declares the notifications exchange and binds the given queues.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: set qos: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		ExchangeNotifications,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err = ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: declare queue %s: %w", op, q.QueueName, err)
		}
		if err = ch.QueueBind(q.QueueName, q.RoutingKey, ExchangeNotifications, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: bind queue %s to %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}
	return ch, nil
}
