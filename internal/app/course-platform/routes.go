// Package courseplatform предоставляет маршруты приложения платформы курса.
package courseplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/config"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/ensureuser"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/magiclink"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/session"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/dashboard/gate"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/health"
	lessonslist "github.com/magabrotheeeer/course-platform/internal/http/handlers/lessons/list"
	lessonsread "github.com/magabrotheeeer/course-platform/internal/http/handlers/lessons/read"
	progresscomplete "github.com/magabrotheeeer/course-platform/internal/http/handlers/progress/complete"
	progressstats "github.com/magabrotheeeer/course-platform/internal/http/handlers/progress/stats"
	subscriptionread "github.com/magabrotheeeer/course-platform/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/identityprovider"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/course-platform/internal/services/accessgate"
	identityservice "github.com/magabrotheeeer/course-platform/internal/services/identity"
	lessonsservice "github.com/magabrotheeeer/course-platform/internal/services/lessons"
	progressservice "github.com/magabrotheeeer/course-platform/internal/services/progress"
	"github.com/magabrotheeeer/course-platform/internal/services/reconciler"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Services собирает зависимости, которые нужны маршрутам.
type Services struct {
	Config     *config.Config
	Verifier   *jwt.Verifier
	Cache      *cache.Cache
	Storage    *repository.Storage
	Identity   *identityservice.Service
	IDProvider *identityprovider.Client
	Payment    *paymentprovider.Client
	Reconciler *reconciler.Service
	Gate       *accessgate.Service
	Lessons    *lessonsservice.Service
	Progress   *progressservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/ensure-user", ensureuser.New(logger, s.Identity).ServeHTTP)
		r.Post("/auth/magic-link", magiclink.New(logger, s.IDProvider,
			s.Config.PaymentProvider.SiteBaseURL+"/welcome").ServeHTTP)
		r.Post("/auth/session", session.New(logger, s.IDProvider).ServeHTTP)
		r.Post("/billing/checkout-session", checkout.New(logger, s.Payment,
			s.Config.PaymentProvider.PriceID, s.Config.PaymentProvider.SiteBaseURL).ServeHTTP)

		// Webhook endpoint (без аутентификации, подпись проверяется по телу)
		r.Post("/billing/webhook", webhook.New(logger, s.Reconciler,
			s.Config.PaymentProvider.WebhookSecret).ServeHTTP)

		// Проверка доступа сама разбирает токен: невалидная сессия здесь
		// не ошибка, а перенаправление на вход
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Get("/dashboard/gate", gate.New(logger, s.Gate).ServeHTTP)
		})

		// Группа закрытых маршрутов: аутентификация и действующая подписка
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(s.Verifier, logger))
			r.Use(middlewarectx.SubscriptionStatusMiddleware(logger, s.Cache, s.Storage))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Get("/subscription", subscriptionread.New(logger, s.Storage).ServeHTTP)
			r.Get("/lessons", lessonslist.New(logger, s.Lessons).ServeHTTP)
			r.Get("/lessons/{slug}", lessonsread.New(logger, s.Lessons, s.Progress).ServeHTTP)
			r.Post("/lessons/{slug}/complete", progresscomplete.New(logger, s.Lessons, s.Progress).ServeHTTP)
			r.Get("/progress", progressstats.New(logger, s.Progress).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
