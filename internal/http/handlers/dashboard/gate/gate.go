// Package gate реализует HTTP-обработчик проверки доступа к дашборду.
//
// Обработчик сам извлекает access-токен из заголовка: отсутствие или
// негодность токена не ошибка, а ответ с перенаправлением на страницу входа.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/services/accessgate"
)

// Handler управляет HTTP-запросами проверки доступа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис проверки доступа
}

// Service описывает интерфейс проверки доступа к дашборду.
type Service interface {
	Check(ctx context.Context, accessToken string) accessgate.Decision
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить доступ к дашборду
// @Description Проверяет сессию и статус подписки. Возвращает либо готовность, либо адрес перенаправления.
// @Tags Dashboard
// @Produce  json
// @Success 200 {object} map[string]any "Готовность или перенаправление"
// @Failure 500 {object} response.ErrorResponse "Проверку не удалось завершить"
// @Router /dashboard/gate [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.gate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	decision := h.service.Check(r.Context(), token)
	switch decision.State {
	case accessgate.StateReady:
		log.Info("access granted", slog.String("user_id", decision.UserID))
		render.JSON(w, r, map[string]any{
			"ready": true,
			"email": decision.Email,
		})
	case accessgate.StateRedirect:
		log.Info("access redirected", slog.String("redirect", decision.RedirectTo))
		render.JSON(w, r, map[string]any{
			"ready":    false,
			"redirect": decision.RedirectTo,
		})
	default:
		log.Error("access check failed", sl.Err(decision.Err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check access"))
	}
}
