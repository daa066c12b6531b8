package models

// Lesson статическая запись урока. Контент курируется вне приложения,
// конечным пользователям видны только опубликованные уроки.
type Lesson struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	VideoURL    *string `json:"video_url,omitempty"`
	OrderIndex  int     `json:"order_index"`
	IsPublished bool    `json:"is_published"`
}

// LessonNavigation слаги соседних по order_index опубликованных уроков.
// Пустая строка означает, что урок крайний и перехода нет.
type LessonNavigation struct {
	PrevSlug string `json:"prev_slug,omitempty"`
	NextSlug string `json:"next_slug,omitempty"`
}
