// Package session реализует HTTP-обработчик обмена одноразового кода или
// refresh-токена на сессию identity-провайдера.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/identityprovider"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами на получение сессии.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Клиент identity-провайдера
}

// Service описывает интерфейс обмена кода и обновления сессии.
type Service interface {
	ExchangeCode(ctx context.Context, code string) (*identityprovider.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identityprovider.Session, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Request тело запроса: одноразовый код из письма либо refresh-токен
// действующей сессии. Должно быть заполнено ровно одно поле.
type Request struct {
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ServeHTTP godoc
// @Summary Получить сессию
// @Description Обменивает одноразовый код или refresh-токен на пару токенов сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Код или refresh-токен"
// @Success 200 {object} identityprovider.Session "Сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Код или токен недействителен"
// @Failure 500 {object} response.ErrorResponse "Ошибка identity-провайдера"
// @Router /auth/session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"
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
	if req.Code == "" && req.RefreshToken == "" {
		log.Error("neither code nor refresh token provided")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("code or refresh_token is required"))
		return
	}

	var session *identityprovider.Session
	var err error
	if req.Code != "" {
		session, err = h.service.ExchangeCode(r.Context(), req.Code)
	} else {
		session, err = h.service.RefreshSession(r.Context(), req.RefreshToken)
	}
	if errors.Is(err, identityprovider.ErrInvalidCredentials) {
		log.Error("credentials rejected by provider", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("code or refresh token is invalid or expired"))
		return
	}
	if err != nil {
		log.Error("failed to obtain session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not obtain session"))
		return
	}

	log.Info("session issued", slog.String("user_id", session.User.ID))
	render.JSON(w, r, session)
}
