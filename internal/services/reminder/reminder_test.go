package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockRepository) MarkReminderSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event models.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func booking(id string, at time.Time) *models.Booking {
	return &models.Booking{
		ID:      id,
		UserUID: "u-1",
		Service: "haircut",
		Date:    at,
		Status:  models.StatusConfirmed,
	}
}

func reminderFor(id string) any {
	return mock.MatchedBy(func(e models.BookingEvent) bool {
		return e.Type == models.EventBookingReminder && e.BookingID == id &&
			e.UserUID == "u-1" && e.EventID != "" && e.OccurredAt.Equal(now)
	})
}

func TestService_RunOnce(t *testing.T) {
	window := []any{mock.Anything, now, now.Add(24 * time.Hour)}

	tests := []struct {
		name       string
		setupMocks func(r *MockRepository, p *MockPublisher)
		wantSent   int
		wantErr    bool
	}{
		{
			name: "nothing due",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ListDueReminders", window...).Return([]*models.Booking{}, nil).Once()
			},
		},
		{
			name: "every due booking is published and marked",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ListDueReminders", window...).Return([]*models.Booking{
					booking("b-1", now.Add(time.Hour)),
					booking("b-2", now.Add(3*time.Hour)),
				}, nil).Once()
				p.On("Publish", mock.Anything, reminderFor("b-1")).Return(nil).Once()
				p.On("Publish", mock.Anything, reminderFor("b-2")).Return(nil).Once()
				r.On("MarkReminderSent", mock.Anything, "b-1").Return(nil).Once()
				r.On("MarkReminderSent", mock.Anything, "b-2").Return(nil).Once()
			},
			wantSent: 2,
		},
		{
			name: "failed publish leaves booking unmarked",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ListDueReminders", window...).Return([]*models.Booking{
					booking("b-1", now.Add(time.Hour)),
					booking("b-2", now.Add(3*time.Hour)),
				}, nil).Once()
				p.On("Publish", mock.Anything, reminderFor("b-1")).Return(errors.New("broker down")).Once()
				p.On("Publish", mock.Anything, reminderFor("b-2")).Return(nil).Once()
				r.On("MarkReminderSent", mock.Anything, "b-2").Return(nil).Once()
			},
			wantSent: 1,
		},
		{
			name: "booking reminded concurrently is not counted",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ListDueReminders", window...).Return([]*models.Booking{
					booking("b-1", now.Add(time.Hour)),
				}, nil).Once()
				p.On("Publish", mock.Anything, reminderFor("b-1")).Return(nil).Once()
				r.On("MarkReminderSent", mock.Anything, "b-1").Return(storage.ErrBookingNotFound).Once()
			},
		},
		{
			name: "store failure",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ListDueReminders", window...).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			pub := new(MockPublisher)
			tt.setupMocks(repo, pub)

			svc := NewService(repo, pub, 24*time.Hour, newNoopLogger())
			svc.now = func() time.Time { return now }

			sent, err := svc.RunOnce(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantSent, sent)

			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_RunOnce_CancelledContext(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	repo.On("ListDueReminders", mock.Anything, now, now.Add(time.Hour)).
		Return([]*models.Booking{booking("b-1", now.Add(time.Minute))}, nil).Once()

	svc := NewService(repo, pub, time.Hour, newNoopLogger())
	svc.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := svc.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sent)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_Run_StopsOnCancel(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	var scans atomic.Int32
	repo.On("ListDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { scans.Add(1) }).
		Return([]*models.Booking{}, nil)

	svc := NewService(repo, pub, time.Hour, newNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return scans.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
