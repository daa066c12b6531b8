// Package ensureuser реализует HTTP-обработчик идемпотентного создания
// пользователя по email.
//
// Handler принимает JSON-запрос с email, валидирует его, находит либо
// создаёт пользователя у identity-провайдера и возвращает его идентификатор.
// Существующий пользователь не является ошибкой: ответ лишь помечается
// флагом existed.
package ensureuser

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
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Handler управляет HTTP-запросами на создание пользователя.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики identity-провайдера
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики поиска или создания пользователя.
type Service interface {
	EnsureUser(ctx context.Context, email string) (*models.User, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Request тело запроса на создание пользователя.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Response тело ответа: идентификатор пользователя и признак того,
// что пользователь существовал ранее.
type Response struct {
	OK      bool   `json:"ok"`
	UserID  string `json:"userId,omitempty"`
	Existed bool   `json:"existed"`
	Error   string `json:"error,omitempty"`
}

// ServeHTTP godoc
// @Summary Создать пользователя по email
// @Description Находит либо создаёт пользователя у identity-провайдера. Повторный вызов с тем же email возвращает existed=true.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} Response "Пользователь найден или создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email"
// @Failure 500 {object} Response "Ошибка identity-провайдера"
// @Router /auth/ensure-user [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.ensureuser"
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

	user, existed, err := h.service.EnsureUser(r.Context(), req.Email)
	if err != nil {
		log.Error("failed to ensure user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Response{OK: false, Error: "could not ensure user"})
		return
	}

	log.Info("user ensured", slog.String("user_id", user.ID), slog.Bool("existed", existed))
	render.JSON(w, r, Response{OK: true, UserID: user.ID, Existed: existed})
}
