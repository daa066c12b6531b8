package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// UpsertProgress отмечает урок пройденным. Ключ конфликта (user_id, lesson_id)
// делает повторную отметку идемпотентной, completed_at отражает последнюю.
func (s *Storage) UpsertProgress(ctx context.Context, userID, lessonID string, completedAt time.Time) error {
	const op = "storage.UpsertProgress"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_progress (user_id, lesson_id, completed, completed_at)
			  VALUES ($1, $2, TRUE, $3)
			  ON CONFLICT (user_id, lesson_id) DO UPDATE
			  SET completed = TRUE,
			      completed_at = EXCLUDED.completed_at`
	_, err := s.DB.ExecContext(ctx, query, userID, lessonID, completedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProgress возвращает отметку прохождения урока пользователем,
// либо nil, если записи ещё нет.
func (s *Storage) GetProgress(ctx context.Context, userID, lessonID string) (*models.Progress, error) {
	const op = "storage.GetProgress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, lesson_id, completed, completed_at
			  FROM user_progress
			  WHERE user_id = $1 AND lesson_id = $2`
	var p models.Progress
	var completedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&p.UserID, &p.LessonID, &p.Completed, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return &p, nil
}

// CountCompletedLessons возвращает количество пройденных пользователем
// опубликованных уроков.
func (s *Storage) CountCompletedLessons(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountCompletedLessons"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM user_progress up
			  JOIN lessons l ON l.id = up.lesson_id
			  WHERE up.user_id = $1 AND up.completed = TRUE AND l.is_published = TRUE`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
