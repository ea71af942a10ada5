// Package auth собирает внутренний gRPC-сервис проверки сессий и учёта использования.
package auth

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/luxera-dashboard/internal/cache"
	"github.com/magabrotheeeer/luxera-dashboard/internal/config"
	"github.com/magabrotheeeer/luxera-dashboard/internal/grpc/dashboardv1"
	"github.com/magabrotheeeer/luxera-dashboard/internal/grpc/server"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	authservice "github.com/magabrotheeeer/luxera-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/catalog"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/subscription"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/usage"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	db         *repository.Storage
	cache      *cache.Cache
	logger     *slog.Logger
}

// New подключает хранилище и готовит gRPC-сервер. Схему базы применяет dashboard.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	app := &App{db: db, logger: logger}

	var sessionCache authservice.Cache
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis is unavailable, sessions are served from the database", sl.Err(err))
		} else {
			app.cache = c
			sessionCache = c
		}
	}

	catalogService := catalog.New(db, logger)
	usageService := usage.New(db, catalogService, subscription.New(db, logger), logger)
	sessions := authservice.New(db, sessionCache, logger, cfg.Session)

	lis, err := net.Listen("tcp", cfg.AddressGRPC)
	if err != nil {
		app.close()
		return nil, err
	}
	app.listener = lis

	app.grpcServer = grpc.NewServer(
		grpc.UnaryInterceptor(server.AdminKeyInterceptor(cfg.AdminAPIKey, dashboardv1.RecordUsageMethod)),
	)
	dashboardv1.RegisterDashboardServer(app.grpcServer, server.NewDashboardServer(sessions, usageService, logger))

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("dashboard gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		a.close()
		return nil
	case err := <-errCh:
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
