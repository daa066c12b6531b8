package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrSubscriptionNotFound возвращается, когда у пользователя нет строки подписки.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// UpsertSubscription вставляет или перезаписывает строку подписки пользователя.
// Ключ конфликта user_id гарантирует не более одной строки на пользователя,
// повторная доставка того же события провайдера идемпотентна.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id,
			      status, current_period_start, current_period_end, cancel_at_period_end, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			  ON CONFLICT (user_id) DO UPDATE
			  SET stripe_customer_id = EXCLUDED.stripe_customer_id,
			      stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			      status = EXCLUDED.status,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			      updated_at = NOW()`
	_, err := s.DB.ExecContext(ctx, query,
		sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscriptionByUserID возвращает строку подписки пользователя.
func (s *Storage) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, stripe_customer_id, stripe_subscription_id, status,
			      current_period_start, current_period_end, cancel_at_period_end
			  FROM subscriptions WHERE user_id = $1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, userID), op)
}

// GetSubscriptionByCustomerID возвращает строку подписки по идентификатору
// покупателя у платёжного провайдера. Используется реконсилятором для
// сопоставления события с пользователем без повторного поиска по email.
func (s *Storage) GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByCustomerID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, stripe_customer_id, stripe_subscription_id, status,
			      current_period_start, current_period_end, cancel_at_period_end
			  FROM subscriptions WHERE stripe_customer_id = $1 LIMIT 1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, customerID), op)
}

// GetSubscriptionStatus возвращает статус подписки пользователя.
func (s *Storage) GetSubscriptionStatus(ctx context.Context, userID string) (string, error) {
	const op = "storage.GetSubscriptionStatus"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT status FROM subscriptions WHERE user_id = $1 LIMIT 1`
	var status string
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

func (s *Storage) scanSubscription(row *sql.Row, op string) (*models.Subscription, error) {
	var sub models.Subscription
	var periodStart, periodEnd sql.NullTime
	err := row.Scan(&sub.UserID, &sub.StripeCustomerID, &sub.StripeSubscriptionID,
		&sub.Status, &periodStart, &periodEnd, &sub.CancelAtPeriodEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return &sub, nil
}
