package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Message is an outgoing JSON delivery. ID becomes the AMQP message id so
// consumers can recognise redeliveries.
type Message struct {
	ID         string
	RoutingKey string
	Payload    any
}

// PublishMessage sends msg to exchange as a persistent JSON delivery
// stamped with its id, routing key as type and the send time.
func PublishMessage(ch *amqp.Channel, exchange string, msg Message) error {
	const op = "rabbitmq.PublishMessage"

	body, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("%s: marshal %s: %w", op, msg.RoutingKey, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.RoutingKey,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err = ch.Publish(exchange, msg.RoutingKey, false, false, pub); err != nil {
		return fmt.Errorf("%s: publish %s: %w", op, msg.RoutingKey, err)
	}
	return nil
}
