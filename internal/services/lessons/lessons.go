// Package lessons отдаёт каталог опубликованных уроков и навигацию по курсу.
package lessons

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Repository определяет операции хранилища уроков.
type Repository interface {
	ListPublishedLessons(ctx context.Context) ([]*models.Lesson, error)
	GetPublishedLessonBySlug(ctx context.Context, slug string) (*models.Lesson, error)
}

// Service предоставляет доступ к урокам курса.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListPublished возвращает опубликованные уроки по порядку курса.
func (s *Service) ListPublished(ctx context.Context) ([]*models.Lesson, error) {
	const op = "lessons.ListPublished"
	items, err := s.repo.ListPublishedLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// BySlug возвращает опубликованный урок по slug.
// Неопубликованные и отсутствующие уроки неразличимы для вызывающего.
func (s *Service) BySlug(ctx context.Context, slug string) (*models.Lesson, error) {
	const op = "lessons.BySlug"
	lesson, err := s.repo.GetPublishedLessonBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lesson, nil
}

// Navigation возвращает slug предыдущего и следующего опубликованного урока
// относительно данного. На краях курса соответствующий slug пуст.
func (s *Service) Navigation(ctx context.Context, slug string) (*models.LessonNavigation, error) {
	const op = "lessons.Navigation"
	items, err := s.repo.ListPublishedLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	nav := &models.LessonNavigation{}
	for i, item := range items {
		if item.Slug != slug {
			continue
		}
		if i > 0 {
			nav.PrevSlug = items[i-1].Slug
		}
		if i < len(items)-1 {
			nav.NextSlug = items[i+1].Slug
		}
		return nav, nil
	}
	return nav, nil
}
