package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

const statusCacheTTL = 5 * time.Minute

// StatusStore читает статус подписки пользователя из хранилища.
type StatusStore interface {
	GetSubscriptionStatus(ctx context.Context, userID string) (string, error)
}

// StatusCache кеш подтверждённых статусов подписки.
type StatusCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// SubscriptionStatusMiddleware создаёт middleware для проверки статуса
// подписки пользователя. Статус читается из кеша, при промахе из хранилища
// ровно один раз, без повторов. Любая ошибка закрывает доступ.
func SubscriptionStatusMiddleware(log *slog.Logger, statusCache StatusCache, store StatusStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			status, err := lookupStatus(r.Context(), statusCache, store, userUID)
			if errors.Is(err, repository.ErrSubscriptionNotFound) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription required"))
				return
			}
			if err != nil {
				log.Error("failed to get subscription status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			sub := models.Subscription{Status: status}
			if !sub.IsAccessGranted() {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func lookupStatus(ctx context.Context, statusCache StatusCache, store StatusStore, userUID string) (string, error) {
	key := cache.SubscriptionStatusKey(userUID)

	var cached string
	found, err := statusCache.Get(key, &cached)
	if err == nil && found {
		return cached, nil
	}

	status, err := store.GetSubscriptionStatus(ctx, userUID)
	if err != nil {
		return "", err
	}
	// промах кеша не считается ошибкой, статус кешируется заново
	_ = statusCache.Set(key, status, statusCacheTTL)
	return status, nil
}
