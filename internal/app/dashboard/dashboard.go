// Package dashboard собирает HTTP-приложение дашборда: хранилище, кэш сессий,
// сервисы предметной области, очередь заявок и маршруты.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/luxera-dashboard/internal/cache"
	"github.com/magabrotheeeer/luxera-dashboard/internal/config"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/migrations"
	"github.com/magabrotheeeer/luxera-dashboard/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/luxera-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/catalog"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/contact"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/profile"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/subscription"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/usage"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// Services набор сервисов, которыми пользуются маршруты.
type Services struct {
	Auth         *authservice.Service
	Subscription *subscription.Service
	Usage        *usage.Service
	Catalog      *catalog.Service
	Profile      *profile.Service
	Contact      *contact.Service
}

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	amqpConn  *amqp.Connection
	publisher *rabbitmq.Publisher
}

// New подключает зависимости, применяет миграции и заполняет справочники.
// Redis необязателен: без него сессии проверяются только по базе.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var sessionCache authservice.Cache
	var cachePinger health.Pinger
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis is unavailable, sessions are served from the database", sl.Err(err))
		} else {
			app.cache = c
			sessionCache = c
			cachePinger = c
		}
	}

	app.amqpConn, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		app.close()
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(app.amqpConn, rabbitmq.ContactExchange, rabbitmq.ContactQueues(cfg.ContactQueue), 0)
	if err != nil {
		app.close()
		return nil, err
	}
	app.publisher = rabbitmq.NewPublisher(ch, rabbitmq.ContactExchange, rabbitmq.ForwardRoutingKey)

	if cfg.RecaptchaSecret == "" {
		logger.Warn("recaptcha secret is not set, contact submissions will be rejected")
	}
	if cfg.AdminAPIKey == "" {
		logger.Warn("admin api key is not set, catalog and usage writes are disabled")
	}

	catalogService := catalog.New(db, logger)
	if err := catalogService.EnsureSeeded(ctx); err != nil {
		app.close()
		return nil, err
	}
	subscriptionService := subscription.New(db, logger)

	services := Services{
		Auth:         authservice.New(db, sessionCache, logger, cfg.Session),
		Subscription: subscriptionService,
		Usage:        usage.New(db, catalogService, subscriptionService, logger),
		Catalog:      catalogService,
		Profile:      profile.New(db, logger),
		Contact: contact.New(db,
			contact.NewRecaptchaVerifier(cfg.RecaptchaVerifyURL, cfg.RecaptchaSecret, cfg.RecaptchaTimeout),
			app.publisher, cfg.ScoreThreshold, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services, health.New(logger, db, cachePinger))

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

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
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			a.logger.Warn("failed to close publisher", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
