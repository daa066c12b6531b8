// Package read реализует HTTP-обработчик получения урока по slug.
//
// Помимо самого урока ответ содержит навигацию по курсу (slug предыдущего
// и следующего урока) и отметку прохождения текущим пользователем.
package read

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

// Handler обрабатывает запросы на получение урока по slug.
type Handler struct {
	log      *slog.Logger    // Логгер для записи информации и ошибок
	lessons  LessonsService  // Сервис бизнес-логики уроков
	progress ProgressService // Сервис прогресса пользователя
}

// LessonsService описывает интерфейс бизнес-логики чтения урока.
type LessonsService interface {
	BySlug(ctx context.Context, slug string) (*models.Lesson, error)
	Navigation(ctx context.Context, slug string) (*models.LessonNavigation, error)
}

// ProgressService описывает интерфейс чтения отметки прохождения.
type ProgressService interface {
	ProgressFor(ctx context.Context, userID, lessonID string) (*models.Progress, error)
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
// @Summary Получить урок по slug
// @Description Возвращает опубликованный урок, навигацию по курсу и отметку прохождения.
// @Tags Lessons
// @Produce  json
// @Param slug path string true "Slug урока"
// @Success 200 {object} response.Response "Урок с навигацией и прогрессом"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /lessons/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lessons.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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
		render.JSON(w, r, response.Error("could not read lesson"))
		return
	}

	nav, err := h.lessons.Navigation(r.Context(), slug)
	if err != nil {
		log.Error("failed to build navigation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read lesson"))
		return
	}

	var userProgress *models.Progress
	if userUID, ok := r.Context().Value(middlewarectx.UserUID).(string); ok && userUID != "" {
		userProgress, err = h.progress.ProgressFor(r.Context(), userUID, lesson.ID)
		if err != nil {
			log.Error("failed to read progress", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read lesson"))
			return
		}
	}

	log.Info("lesson read", slog.String("slug", slug))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lesson":     lesson,
		"navigation": nav,
		"progress":   userProgress,
	}))
}
