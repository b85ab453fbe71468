package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/beauty-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userUID string) ([]*models.Booking, error) {
	args := m.Called(ctx, userUID)
	bookings, _ := args.Get(0).([]*models.Booking)
	return bookings, args.Error(1)
}

func withUser(r *http.Request, uid string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middlewarectx.UserUID, uid))
}

func TestListHandler_KeepsServiceOrder(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	later := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	svc := new(MockService)
	svc.On("List", mock.Anything, "uid-1").Return([]*models.Booking{
		{ID: "b-2", UserUID: "uid-1", Service: "color", Date: later},
		{ID: "b-1", UserUID: "uid-1", Service: "haircut", Date: earlier},
	}, nil)

	w := httptest.NewRecorder()
	New(logger, svc).ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/bookings", nil), "uid-1"))

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b-2", got[0].ID)
	assert.Equal(t, "b-1", got[1].ID)
	svc.AssertExpectations(t)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "no bookings",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "uid-1").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "no identity",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Unauthorized: Invalid token"}`,
		},
		{
			name:    "store failure",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "uid-1").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
			if tt.userUID != "" {
				req = withUser(req, tt.userUID)
			}
			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
