package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение подписки",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("GetSubscriptionByUserID", mock.Anything, "uid-1").
					Return(&models.Subscription{
						UserID:           "uid-1",
						StripeCustomerID: "cus_1",
						Status:           "active",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"active"`,
		},
		{
			name:           "нет пользователя в контексте",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:    "подписки нет",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("GetSubscriptionByUserID", mock.Anything, "uid-1").
					Return(nil, repository.ErrSubscriptionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"subscription not found"`,
		},
		{
			name:    "ошибка хранилища",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("GetSubscriptionByUserID", mock.Anything, "uid-1").
					Return(nil, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not read subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/subscription", nil)
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
