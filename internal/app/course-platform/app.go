// Package courseplatform собирает приложение платформы курса: хранилище,
// миграции, кеш, очередь ручной реконсиляции, клиентов внешних провайдеров
// и HTTP-сервер с маршрутами.
package courseplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/config"
	"github.com/magabrotheeeer/course-platform/internal/identityprovider"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/migrations"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/course-platform/internal/services/accessgate"
	identityservice "github.com/magabrotheeeer/course-platform/internal/services/identity"
	lessonsservice "github.com/magabrotheeeer/course-platform/internal/services/lessons"
	progressservice "github.com/magabrotheeeer/course-platform/internal/services/progress"
	"github.com/magabrotheeeer/course-platform/internal/services/reconciler"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// App агрегирует ресурсы приложения и HTTP-сервер.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New инициализирует все зависимости приложения. Очередь ручной
// реконсиляции необязательна: без настроенного RabbitMQ неразрешённые
// события вебхука только логируются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var unresolvedPublisher reconciler.UnresolvedPublisher
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		channel, err := amqpConn.Channel()
		if err != nil {
			return nil, err
		}
		if err := rabbitmq.SetupQueues(channel, cfg.RabbitMQ.Exchange, rabbitmq.GetReconcileQueues()); err != nil {
			return nil, err
		}
		unresolvedPublisher = reconciler.NewAMQPPublisher(channel, cfg.RabbitMQ.Exchange)
	} else {
		logger.Warn("rabbitmq url is not configured, unresolved webhook events will only be logged")
	}

	identityClient := identityprovider.NewClient(cfg.IdentityProvider.IdentityBaseURL, cfg.IdentityProvider.ServiceKey)
	paymentClient := paymentprovider.NewClient(cfg.PaymentProvider.PaymentBaseURL, cfg.PaymentProvider.APIKey)
	verifier := jwt.NewVerifier(cfg.IdentityProvider.JWTSecretKey)

	identityService := identityservice.New(identityClient, logger)
	reconcilerService := reconciler.New(db, identityService, paymentClient, cacheRedis, unresolvedPublisher, logger)
	gateService := accessgate.New(verifier, db, cacheRedis, logger)
	lessonsService := lessonsservice.New(db, logger)
	progressService := progressservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Config:     cfg,
		Verifier:   verifier,
		Cache:      cacheRedis,
		Storage:    db,
		Identity:   identityService,
		IDProvider: identityClient,
		Payment:    paymentClient,
		Reconciler: reconcilerService,
		Gate:       gateService,
		Lessons:    lessonsService,
		Progress:   progressService,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
