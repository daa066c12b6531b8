package stats

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
)

// MockService реализует интерфейс stats.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Stats(ctx context.Context, userID string) (*models.ProgressStats, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.(*models.ProgressStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStatsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение статистики",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Stats", mock.Anything, "uid-1").Return(&models.ProgressStats{
					TotalLessons:     4,
					CompletedLessons: 2,
					Percentage:       50,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"percentage":50`,
		},
		{
			name:           "нет пользователя в контексте",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:    "ошибка хранилища",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Stats", mock.Anything, "uid-1").Return(nil, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not get progress"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/progress", nil)
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
