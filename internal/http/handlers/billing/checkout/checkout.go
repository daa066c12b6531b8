// Package checkout реализует HTTP-обработчик создания checkout-сессии
// платёжного провайдера для оформления подписки.
package checkout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
)

// Handler управляет HTTP-запросами на создание checkout-сессии.
type Handler struct {
	log         *slog.Logger // Логгер для записи информации и ошибок
	service     Service      // Клиент платёжного провайдера
	priceID     string       // Идентификатор тарифа подписки
	siteBaseURL string       // Базовый адрес сайта для ссылок возврата
}

// Service описывает интерфейс создания checkout-сессии.
type Service interface {
	CreateCheckoutSession(ctx context.Context, params paymentprovider.CheckoutSessionParams) (*paymentprovider.CheckoutSessionResponse, error)
}

// New создает новый Handler с переданными логгером, сервисом и настройками тарифа.
func New(log *slog.Logger, service Service, priceID, siteBaseURL string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		priceID:     priceID,
		siteBaseURL: siteBaseURL,
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Создает у платёжного провайдера сессию оформления подписки и возвращает URL оплаты.
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]string "URL страницы оплаты"
// @Failure 500 {object} response.ErrorResponse "Тариф не настроен или ошибка провайдера"
// @Router /billing/checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.priceID == "" || h.siteBaseURL == "" {
		log.Error("price id or site base url is not configured")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("billing is not configured"))
		return
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), paymentprovider.CheckoutSessionParams{
		PriceID:             h.priceID,
		SuccessURL:          h.siteBaseURL + "/welcome?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:           h.siteBaseURL + "/pricing",
		AllowPromotionCodes: true,
	})
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("session_id", session.ID))
	render.JSON(w, r, map[string]string{"url": session.URL})
}
