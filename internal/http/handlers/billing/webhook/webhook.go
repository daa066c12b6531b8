// Package webhook реализует HTTP-обработчик вебхука платёжного провайдера.
//
// Подпись запроса проверяется по сырому телу до любого разбора JSON;
// неподписанные запросы не меняют состояние. Успешная обработка, включая
// пропуск нерелевантных событий, подтверждается ответом {received:true},
// ошибка обработчика возвращает 500 и провайдер доставляет событие повторно.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
)

// SignatureHeader заголовок с подписью тела вебхука.
const SignatureHeader = "Stripe-Signature"

// Service описывает интерфейс обработки проверенного события.
type Service interface {
	ProcessEvent(ctx context.Context, event paymentprovider.Event) error
}

// Handler управляет HTTP-запросами вебхука.
type Handler struct {
	log           *slog.Logger // Логгер для записи информации и ошибок
	service       Service      // Реконсилятор событий
	webhookSecret string       // Секрет для проверки подписи
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

type failureResponse struct {
	Error     string `json:"error"`
	EventType string `json:"eventType"`
	Message   string `json:"message"`
}

// ServeHTTP обрабатывает HTTP-запрос вебхука: читает сырое тело, проверяет
// подпись, разбирает событие и передаёт его реконсилятору.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		log.Error("missing webhook signature")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, failureResponse{Error: "missing signature"})
		return
	}
	if err := paymentprovider.VerifySignature(body, signature, h.webhookSecret,
		paymentprovider.DefaultSignatureTolerance); err != nil {
		log.Error("invalid webhook signature", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, failureResponse{Error: "invalid signature"})
		return
	}

	var event paymentprovider.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, failureResponse{Error: "invalid payload"})
		return
	}

	if err := h.service.ProcessEvent(r.Context(), event); err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, failureResponse{
			Error:     "event processing failed",
			EventType: event.Type,
			Message:   err.Error(),
		})
		return
	}

	log.Info("webhook processed", slog.String("event_type", event.Type), slog.String("event_id", event.ID))
	render.JSON(w, r, map[string]bool{"received": true})
}
