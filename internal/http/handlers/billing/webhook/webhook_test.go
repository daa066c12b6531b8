package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
)

// MockService реализует интерфейс webhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessEvent(ctx context.Context, event paymentprovider.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const testSecret = "whsec_test"

func signBody(body []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eventBody := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	tests := []struct {
		name           string
		body           []byte
		signature      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешная обработка события",
			body:      eventBody,
			signature: signBody(eventBody),
			setupMock: func(m *MockService) {
				m.On("ProcessEvent", mock.Anything, mock.MatchedBy(func(e paymentprovider.Event) bool {
					return e.ID == "evt_1" && e.Type == "checkout.session.completed"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"received":true`,
		},
		{
			name:           "отсутствует подпись",
			body:           eventBody,
			signature:      "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"missing signature"`,
		},
		{
			name:           "подпись другим секретом",
			body:           eventBody,
			signature:      "t=1700000000,v1=deadbeef",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid signature"`,
		},
		{
			name:           "подписанное, но некорректное тело",
			body:           []byte(`{"id":`),
			signature:      signBody([]byte(`{"id":`)),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid payload"`,
		},
		{
			name:      "ошибка обработчика ведет к повторной доставке",
			body:      eventBody,
			signature: signBody(eventBody),
			setupMock: func(m *MockService) {
				m.On("ProcessEvent", mock.Anything, mock.Anything).
					Return(errors.New("checkout.session.completed: resolve user: provider unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"eventType":"checkout.session.completed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
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

func TestWebhookHandler_NoStateChangeWithoutSignature(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mockService := new(MockService)

	handler := New(logger, mockService, testSecret)

	body := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
}
