// Package reconciler переводит события вебхука платёжного провайдера в
// авторитетные строки подписок. Терпит повторную и неупорядоченную доставку:
// upsert по user_id делает обработку идемпотентной, а неизвестные покупатели
// пропускаются и откладываются в очередь ручной реконсиляции.
package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/metrics"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// ErrMissingEmail у покупателя не удалось получить email ни из события,
// ни из записи покупателя у провайдера.
var ErrMissingEmail = errors.New("customer email is missing")

// ErrMissingCustomer событие checkout не содержит идентификатор покупателя.
var ErrMissingCustomer = errors.New("customer id is missing")

// SubscriptionRepository определяет операции хранилища, нужные реконсилятору.
type SubscriptionRepository interface {
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
}

// IdentityResolver сопоставляет email с пользователем, создавая его при необходимости.
type IdentityResolver interface {
	EnsureUser(ctx context.Context, email string) (*models.User, bool, error)
}

// ProviderClient описывает запросы к платёжному провайдеру.
type ProviderClient interface {
	GetCustomer(ctx context.Context, customerID string) (*paymentprovider.Customer, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// Cache описывает инвалидацию кеша статуса подписки.
type Cache interface {
	Invalidate(key string) error
}

// UnresolvedEvent ссылка на событие, пропущенное из-за неразрешимого
// покупателя; публикуется в очередь ручной реконсиляции.
type UnresolvedEvent struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}

// UnresolvedPublisher публикует пропущенные события для разбора оператором.
type UnresolvedPublisher interface {
	PublishUnresolved(event UnresolvedEvent) error
}

// Service реализует реконсиляцию событий вебхука.
type Service struct {
	repo      SubscriptionRepository
	identity  IdentityResolver
	provider  ProviderClient
	cache     Cache
	publisher UnresolvedPublisher
	log       *slog.Logger
}

// New создает Service. publisher может быть nil, тогда пропуски только логируются.
func New(repo SubscriptionRepository, identity IdentityResolver, provider ProviderClient,
	cacheStore Cache, publisher UnresolvedPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		identity:  identity,
		provider:  provider,
		cache:     cacheStore,
		publisher: publisher,
		log:       log,
	}
}

// ProcessEvent интерпретирует одно проверенное по подписи событие.
// Нераспознанные типы подтверждаются как no-op. Ошибка означает, что
// провайдер должен доставить событие повторно.
func (s *Service) ProcessEvent(ctx context.Context, event paymentprovider.Event) error {
	log := s.log.With(slog.String("event_id", event.ID), slog.String("event_type", event.Type))

	var err error
	switch event.Type {
	case paymentprovider.EventCheckoutCompleted:
		err = s.handleCheckoutCompleted(ctx, log, event)
	case paymentprovider.EventSubscriptionCreated,
		paymentprovider.EventSubscriptionUpdated,
		paymentprovider.EventSubscriptionDeleted:
		err = s.handleSubscriptionEvent(ctx, log, event)
	default:
		log.Info("ignored webhook event")
		metrics.WebhookEvents.WithLabelValues(event.Type, "skipped").Inc()
		return nil
	}

	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
		return fmt.Errorf("%s: %w", event.Type, err)
	}
	return nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, log *slog.Logger, event paymentprovider.Event) error {
	var session paymentprovider.CheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return fmt.Errorf("unmarshal checkout session: %w", err)
	}

	if session.Subscription == "" {
		// разовая покупка без подписки, состояние не меняем
		log.Info("checkout without subscription, skipping")
		metrics.WebhookEvents.WithLabelValues(event.Type, "skipped").Inc()
		return nil
	}
	if session.Customer == "" {
		return ErrMissingCustomer
	}

	email := session.Email()
	if email == "" {
		customer, err := s.provider.GetCustomer(ctx, session.Customer)
		if err != nil {
			return fmt.Errorf("lookup customer %s: %w", session.Customer, err)
		}
		email = customer.Email
	}
	if email == "" {
		return fmt.Errorf("%w: customer %s", ErrMissingEmail, session.Customer)
	}

	user, _, err := s.identity.EnsureUser(ctx, email)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	detail, err := s.provider.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return fmt.Errorf("lookup subscription %s: %w", session.Subscription, err)
	}

	sub := models.Subscription{
		UserID:               user.ID,
		StripeCustomerID:     session.Customer,
		StripeSubscriptionID: detail.ID,
		Status:               detail.Status,
		CurrentPeriodStart:   unixTime(detail.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(detail.CurrentPeriodEnd),
		CancelAtPeriodEnd:    detail.CancelAtPeriodEnd,
	}
	return s.upsert(ctx, log, event.Type, sub)
}

func (s *Service) handleSubscriptionEvent(ctx context.Context, log *slog.Logger, event paymentprovider.Event) error {
	var obj paymentprovider.SubscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("unmarshal subscription object: %w", err)
	}

	customerID, ok := obj.CustomerID()
	if !ok {
		// развёрнутая ссылка на покупателя вместо строки
		log.Warn("non-string customer reference, skipping")
		metrics.WebhookEvents.WithLabelValues(event.Type, "skipped").Inc()
		return nil
	}

	userID, skipReason, err := s.resolveUserID(ctx, customerID)
	if err != nil {
		return err
	}
	if skipReason != "" {
		log.Warn("cannot attribute subscription event, skipping",
			slog.String("customer_id", customerID), slog.String("reason", skipReason))
		s.publishUnresolved(log, UnresolvedEvent{
			EventID:    event.ID,
			EventType:  event.Type,
			CustomerID: customerID,
			Reason:     skipReason,
		})
		metrics.WebhookEvents.WithLabelValues(event.Type, "skipped").Inc()
		return nil
	}

	sub := models.Subscription{
		UserID:               userID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: obj.ID,
		Status:               obj.Status,
		CurrentPeriodStart:   unixTime(obj.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(obj.CurrentPeriodEnd),
		CancelAtPeriodEnd:    obj.CancelAtPeriodEnd,
	}
	return s.upsert(ctx, log, event.Type, sub)
}

// resolveUserID сопоставляет покупателя с пользователем: сначала по уже
// существующей строке подписки, затем по email покупателя у провайдера.
// Непустой skipReason означает, что событие некому атрибутировать.
func (s *Service) resolveUserID(ctx context.Context, customerID string) (userID, skipReason string, err error) {
	existing, err := s.repo.GetSubscriptionByCustomerID(ctx, customerID)
	if err == nil {
		return existing.UserID, "", nil
	}
	if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return "", "", fmt.Errorf("lookup subscription mapping: %w", err)
	}

	customer, err := s.provider.GetCustomer(ctx, customerID)
	if err != nil {
		return "", "", fmt.Errorf("lookup customer %s: %w", customerID, err)
	}
	if customer.Deleted {
		return "", "customer deleted", nil
	}
	if customer.Email == "" {
		return "", "customer has no email", nil
	}

	user, _, err := s.identity.EnsureUser(ctx, customer.Email)
	if err != nil {
		return "", "", fmt.Errorf("resolve user: %w", err)
	}
	return user.ID, "", nil
}

func (s *Service) upsert(ctx context.Context, log *slog.Logger, eventType string, sub models.Subscription) error {
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	if err := s.cache.Invalidate(cache.SubscriptionStatusKey(sub.UserID)); err != nil {
		log.Warn("failed to invalidate status cache", sl.Err(err))
	}
	log.Info("subscription reconciled",
		slog.String("user_id", sub.UserID), slog.String("status", sub.Status))
	metrics.WebhookEvents.WithLabelValues(eventType, "processed").Inc()
	return nil
}

func (s *Service) publishUnresolved(log *slog.Logger, event UnresolvedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUnresolved(event); err != nil {
		// публикация не должна ронять обработку вебхука
		log.Error("failed to publish unresolved event", sl.Err(err))
	}
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
