package session

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

	"github.com/magabrotheeeer/course-platform/internal/identityprovider"
)

// MockService реализует интерфейс session.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ExchangeCode(ctx context.Context, code string) (*identityprovider.Session, error) {
	args := m.Called(ctx, code)
	if res := args.Get(0); res != nil {
		return res.(*identityprovider.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) RefreshSession(ctx context.Context, refreshToken string) (*identityprovider.Session, error) {
	args := m.Called(ctx, refreshToken)
	if res := args.Get(0); res != nil {
		return res.(*identityprovider.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSessionHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	session := &identityprovider.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		ExpiresIn:    3600,
		User:         identityprovider.User{ID: "uid-1", Email: "user@example.com"},
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "обмен кода на сессию",
			body: `{"code":"otp-code"}`,
			setupMock: func(m *MockService) {
				m.On("ExchangeCode", mock.Anything, "otp-code").Return(session, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"access_token":"access"`,
		},
		{
			name: "обновление сессии по refresh-токену",
			body: `{"refresh_token":"refresh"}`,
			setupMock: func(m *MockService) {
				m.On("RefreshSession", mock.Anything, "refresh").Return(session, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"refresh_token":"refresh"`,
		},
		{
			name:           "пустой запрос",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code or refresh_token is required"`,
		},
		{
			name: "недействительный код",
			body: `{"code":"expired"}`,
			setupMock: func(m *MockService) {
				m.On("ExchangeCode", mock.Anything, "expired").
					Return(nil, identityprovider.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"code or refresh token is invalid or expired"`,
		},
		{
			name: "ошибка identity-провайдера",
			body: `{"code":"otp-code"}`,
			setupMock: func(m *MockService) {
				m.On("ExchangeCode", mock.Anything, "otp-code").
					Return(nil, errors.New("provider unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not obtain session"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/session", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
