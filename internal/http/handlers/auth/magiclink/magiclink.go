// Package magiclink реализует HTTP-обработчик отправки ссылки для входа
// на email пользователя через identity-провайдер.
package magiclink

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами на отправку magic-link.
type Handler struct {
	log             *slog.Logger        // Логгер для записи информации и ошибок
	service         Service             // Клиент identity-провайдера
	validate        *validator.Validate // Валидатор структуры входящих данных
	defaultRedirect string              // Адрес возврата после входа по умолчанию
}

// Service описывает интерфейс отправки ссылки для входа.
type Service interface {
	SendMagicLink(ctx context.Context, email, redirectTo string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service, defaultRedirect string) *Handler {
	return &Handler{
		log:             log,
		service:         service,
		validate:        validator.New(),
		defaultRedirect: defaultRedirect,
	}
}

// Request тело запроса на отправку ссылки для входа.
type Request struct {
	Email      string `json:"email" validate:"required,email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ServeHTTP godoc
// @Summary Отправить ссылку для входа
// @Description Отправляет на email ссылку для беспарольного входа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} response.Response "Ссылка отправлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email"
// @Failure 500 {object} response.ErrorResponse "Ошибка identity-провайдера"
// @Router /auth/magic-link [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.magiclink"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	redirectTo := req.RedirectTo
	if redirectTo == "" {
		redirectTo = h.defaultRedirect
	}

	if err := h.service.SendMagicLink(r.Context(), req.Email, redirectTo); err != nil {
		log.Error("failed to send magic link", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send magic link"))
		return
	}

	log.Info("magic link sent")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"sent": true,
	}))
}
