// Package models содержит доменные структуры приложения: подписки,
// уроки, прогресс пользователя и события платёжного провайдера.
package models

import "time"

// Статусы подписки, при которых доступ к дашборду разрешён.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription единственная строка биллингового состояния пользователя.
// Ровно одна строка на пользователя (уникальный ключ user_id); строка
// перезаписывается реконсилятором при каждом релевантном событии провайдера.
type Subscription struct {
	UserID               string     `json:"user_id"`
	StripeCustomerID     string     `json:"stripe_customer_id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	Status               string     `json:"status"`
	CurrentPeriodStart   *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
}

// IsAccessGranted сообщает, даёт ли текущий статус доступ к контенту.
func (s *Subscription) IsAccessGranted() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
