// Package accessgate решает, пускать ли пользователя в закрытую часть
// платформы. Проверка устойчива к гонке с вебхуком оплаты: сразу после
// оплаты строка подписки может ещё не существовать, поэтому статус
// опрашивается повторно с фиксированным интервалом.
package accessgate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/retry"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/metrics"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// State результат проверки доступа.
type State int

const (
	// StateReady доступ разрешён.
	StateReady State = iota
	// StateRedirect доступа нет, пользователя нужно отправить на RedirectTo.
	StateRedirect
	// StateError проверку не удалось завершить; доступ не даётся.
	StateError
)

// Маршруты, на которые отправляется пользователь без доступа.
const (
	RedirectWelcome = "/welcome"
	RedirectExpired = "/subscription-expired"
)

const statusCacheTTL = 5 * time.Minute

// Decision итог проверки доступа для одного запроса.
type Decision struct {
	State      State
	UserID     string
	Email      string
	RedirectTo string
	Err        error
}

// TokenVerifier проверяет access-токен и извлекает данные сессии.
type TokenVerifier interface {
	ParseToken(tokenStr string) (*jwt.SessionClaims, error)
}

// StatusStore читает статус подписки пользователя.
type StatusStore interface {
	GetSubscriptionStatus(ctx context.Context, userID string) (string, error)
}

// StatusCache сохраняет подтверждённый статус для middleware закрытых маршрутов.
type StatusCache interface {
	Set(key string, value any, expiration time.Duration) error
}

// DefaultPolicy повторов опроса статуса: пять попыток с паузой в секунду,
// чтобы переждать доставку вебхука после оплаты.
var DefaultPolicy = retry.Policy{MaxAttempts: 5, Interval: time.Second}

// Service реализует проверку доступа к дашборду.
type Service struct {
	verifier TokenVerifier
	store    StatusStore
	cache    StatusCache
	policy   retry.Policy
	log      *slog.Logger
}

// New создает Service с политикой повторов DefaultPolicy.
func New(verifier TokenVerifier, store StatusStore, cacheStore StatusCache, log *slog.Logger) *Service {
	return NewWithPolicy(verifier, store, cacheStore, DefaultPolicy, log)
}

// NewWithPolicy создает Service с явной политикой повторов.
func NewWithPolicy(verifier TokenVerifier, store StatusStore, cacheStore StatusCache,
	policy retry.Policy, log *slog.Logger) *Service {
	return &Service{
		verifier: verifier,
		store:    store,
		cache:    cacheStore,
		policy:   policy,
		log:      log,
	}
}

// Check проверяет access-токен и статус подписки его владельца.
// Отсутствие сессии ведёт на RedirectWelcome, исчерпание попыток без
// действующей подписки на RedirectExpired. Ошибка хранилища закрывает
// доступ без перенаправления.
func (s *Service) Check(ctx context.Context, accessToken string) Decision {
	claims, err := s.verifier.ParseToken(accessToken)
	if err != nil {
		s.log.Info("gate: no valid session", sl.Err(err))
		metrics.GateDecisions.WithLabelValues("redirect_welcome").Inc()
		return Decision{State: StateRedirect, RedirectTo: RedirectWelcome}
	}

	userID := claims.UserID()
	log := s.log.With(slog.String("user_id", userID))

	var lastStatus string
	granted, err := s.policy.Do(ctx, func(ctx context.Context) (bool, error) {
		status, err := s.store.GetSubscriptionStatus(ctx, userID)
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			// вебхук мог ещё не дойти, считаем попытку неуспешной
			return false, nil
		}
		if err != nil {
			return false, err
		}
		lastStatus = status
		sub := models.Subscription{Status: status}
		return sub.IsAccessGranted(), nil
	})
	if err != nil {
		log.Error("gate: status check failed", sl.Err(err))
		metrics.GateDecisions.WithLabelValues("error").Inc()
		return Decision{State: StateError, Err: err}
	}
	if !granted {
		log.Info("gate: no active subscription", slog.String("last_status", lastStatus))
		metrics.GateDecisions.WithLabelValues("redirect_expired").Inc()
		return Decision{State: StateRedirect, RedirectTo: RedirectExpired}
	}

	if err := s.cache.Set(cache.SubscriptionStatusKey(userID), lastStatus, statusCacheTTL); err != nil {
		log.Warn("gate: failed to cache status", sl.Err(err))
	}
	log.Info("gate: access granted", slog.String("status", lastStatus))
	metrics.GateDecisions.WithLabelValues("ready").Inc()
	return Decision{State: StateReady, UserID: userID, Email: claims.Email}
}
