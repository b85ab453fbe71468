package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
)

func startBroker(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-management",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("5672/tcp"))
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), models.BookingEvent{}))
}

func TestPublisher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(nil).Publish(ctx, models.BookingEvent{Type: models.EventBookingCreated})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_Publish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping broker test in short mode")
	}
	conn, err := rabbitmq.Connect(startBroker(t), 10, time.Second)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBookingQueues())
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	p := NewPublisher(ch)
	events := []models.BookingEvent{
		{EventID: "1", Type: models.EventBookingCreated, BookingID: "b-1", Status: models.StatusPending},
		{EventID: "2", Type: models.EventBookingStatusChanged, BookingID: "b-1", Status: models.StatusCancelled},
		{EventID: "3", Type: models.EventBookingReminder, BookingID: "b-2", Status: models.StatusConfirmed},
	}
	require.Len(t, events, len(rabbitmq.GetBookingQueues()))
	for _, e := range events {
		require.NoError(t, p.Publish(context.Background(), e))
	}

	for i, q := range rabbitmq.GetBookingQueues() {
		var d amqp.Delivery
		require.Eventually(t, func() bool {
			var ok bool
			d, ok, err = ch.Get(q.QueueName, true)
			return err == nil && ok
		}, 5*time.Second, 50*time.Millisecond, "queue %s is empty", q.QueueName)

		var got models.BookingEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, events[i].EventID, got.EventID)
		assert.Equal(t, q.RoutingKey, got.Type)
		assert.Equal(t, events[i].EventID, d.MessageId)
	}
}
