package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrLessonNotFound возвращается, когда опубликованный урок с таким slug отсутствует.
var ErrLessonNotFound = errors.New("lesson not found")

// ListPublishedLessons возвращает опубликованные уроки по возрастанию order_index.
func (s *Storage) ListPublishedLessons(ctx context.Context) ([]*models.Lesson, error) {
	const op = "storage.ListPublishedLessons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, slug, description, content, video_url, order_index, is_published
			  FROM lessons
			  WHERE is_published = TRUE
			  ORDER BY order_index ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Lesson
	for rows.Next() {
		var item models.Lesson
		if err := rows.Scan(&item.ID, &item.Title, &item.Slug, &item.Description,
			&item.Content, &item.VideoURL, &item.OrderIndex, &item.IsPublished); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPublishedLessonBySlug возвращает опубликованный урок по его slug.
func (s *Storage) GetPublishedLessonBySlug(ctx context.Context, slug string) (*models.Lesson, error) {
	const op = "storage.GetPublishedLessonBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, slug, description, content, video_url, order_index, is_published
			  FROM lessons
			  WHERE slug = $1 AND is_published = TRUE`
	var item models.Lesson
	err := s.DB.QueryRowContext(ctx, query, slug).Scan(&item.ID, &item.Title, &item.Slug,
		&item.Description, &item.Content, &item.VideoURL, &item.OrderIndex, &item.IsPublished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrLessonNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// CountPublishedLessons возвращает количество опубликованных уроков.
func (s *Storage) CountPublishedLessons(ctx context.Context) (int, error) {
	const op = "storage.CountPublishedLessons"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM lessons WHERE is_published = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
