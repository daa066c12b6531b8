// Package complete реализует HTTP-обработчик отметки урока пройденным.
package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Handler обрабатывает запросы на отметку урока пройденным.
type Handler struct {
	log      *slog.Logger    // Логгер для записи информации и ошибок
	lessons  LessonsService  // Сервис бизнес-логики уроков
	progress ProgressService // Сервис прогресса пользователя
}

// LessonsService описывает интерфейс поиска урока по slug.
type LessonsService interface {
	BySlug(ctx context.Context, slug string) (*models.Lesson, error)
}

// ProgressService описывает интерфейс отметки прохождения.
type ProgressService interface {
	MarkCompleted(ctx context.Context, userID, lessonID string) error
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, lessons LessonsService, progress ProgressService) *Handler {
	return &Handler{
		log:      log,
		lessons:  lessons,
		progress: progress,
	}
}

// ServeHTTP godoc
// @Summary Отметить урок пройденным
// @Description Ставит отметку прохождения урока текущим пользователем. Повторная отметка не ошибка.
// @Tags Progress
// @Produce  json
// @Param slug path string true "Slug урока"
// @Success 200 {object} response.Response "Урок отмечен"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /lessons/{slug}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.complete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	slug := chi.URLParam(r, "slug")

	lesson, err := h.lessons.BySlug(r.Context(), slug)
	if errors.Is(err, repository.ErrLessonNotFound) {
		log.Info("lesson not found", slog.String("slug", slug))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("lesson not found"))
		return
	}
	if err != nil {
		log.Error("failed to read lesson", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark lesson"))
		return
	}

	if err := h.progress.MarkCompleted(r.Context(), userUID, lesson.ID); err != nil {
		log.Error("failed to mark lesson completed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark lesson"))
		return
	}

	log.Info("lesson marked completed", slog.String("slug", slug))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"completed": true,
	}))
}
