// Package progress ведёт отметки прохождения уроков и сводную статистику курса.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Repository определяет операции хранилища прогресса.
type Repository interface {
	UpsertProgress(ctx context.Context, userID, lessonID string, completedAt time.Time) error
	GetProgress(ctx context.Context, userID, lessonID string) (*models.Progress, error)
	CountPublishedLessons(ctx context.Context) (int, error)
	CountCompletedLessons(ctx context.Context, userID string) (int, error)
}

// Service реализует учёт прогресса пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// MarkCompleted отмечает урок пройденным. Повторная отметка обновляет
// только время прохождения.
func (s *Service) MarkCompleted(ctx context.Context, userID, lessonID string) error {
	const op = "progress.MarkCompleted"
	if err := s.repo.UpsertProgress(ctx, userID, lessonID, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("lesson completed",
		slog.String("user_id", userID), slog.String("lesson_id", lessonID))
	return nil
}

// ProgressFor возвращает отметку прохождения конкретного урока,
// nil означает отсутствие отметки.
func (s *Service) ProgressFor(ctx context.Context, userID, lessonID string) (*models.Progress, error) {
	const op = "progress.ProgressFor"
	p, err := s.repo.GetProgress(ctx, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Stats возвращает сводку прогресса по опубликованным урокам. Процент
// округляется и зажимается в границы [0, 100]; пустой курс даёт ноль.
func (s *Service) Stats(ctx context.Context, userID string) (*models.ProgressStats, error) {
	const op = "progress.Stats"

	total, err := s.repo.CountPublishedLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	completed, err := s.repo.CountCompletedLessons(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completed) / float64(total) * 100))
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	return &models.ProgressStats{
		TotalLessons:     total,
		CompletedLessons: completed,
		Percentage:       percentage,
	}, nil
}
