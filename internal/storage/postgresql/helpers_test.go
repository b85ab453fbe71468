package postgresql

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/beauty-booking/internal/migrations"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
)

// setupTestDatabase starts a PostgreSQL container and applies the project migrations.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var s *Storage
	for range 10 {
		if s, err = New(connStr); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to connect after retries")

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, filepath.Join(root, "migrations")))

	t.Cleanup(func() {
		_ = s.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return s
}

func createTestUser(t *testing.T, s *Storage, email string) string {
	t.Helper()
	uid, err := s.CreateUser(context.Background(), models.User{
		Name:         "Alice",
		Email:        email,
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	return uid
}

func newTestBooking(userUID string, date time.Time) models.Booking {
	return models.Booking{
		UserUID:  userUID,
		Service:  "haircut",
		Date:     date,
		Duration: models.DefaultDurationMinutes,
		Status:   models.StatusPending,
	}
}
