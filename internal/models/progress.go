package models

import "time"

// Progress отметка о прохождении урока, составной ключ (user_id, lesson_id).
type Progress struct {
	UserID      string     `json:"user_id"`
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProgressStats агрегированная статистика прохождения курса.
type ProgressStats struct {
	TotalLessons     int `json:"total_lessons"`
	CompletedLessons int `json:"completed_lessons"`
	Percentage       int `json:"percentage"`
}
