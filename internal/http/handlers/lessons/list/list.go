// Package list реализует HTTP-обработчик получения списка опубликованных уроков.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Handler обрабатывает запросы на получение списка уроков.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уроков
}

// Service описывает интерфейс бизнес-логики списка уроков.
type Service interface {
	ListPublished(ctx context.Context) ([]*models.Lesson, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список уроков курса
// @Description Возвращает опубликованные уроки по порядку курса.
// @Tags Lessons
// @Produce  json
// @Success 200 {object} response.Response "Список уроков"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lessons.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.service.ListPublished(r.Context())
	if err != nil {
		log.Error("failed to list lessons", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list lessons"))
		return
	}

	log.Info("lessons listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lessons": items,
	}))
}
