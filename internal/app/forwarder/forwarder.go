// Package forwarder собирает воркер, который читает очередь заявок и пересылает их в webhook.
package forwarder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/luxera-dashboard/internal/config"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/rabbitmq"
	forwarderservice "github.com/magabrotheeeer/luxera-dashboard/internal/services/forwarder"
)

// workers число одновременных отправок в webhook.
const workers = 4

// App воркер пересылки.
type App struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queue     string
	forwarder *forwarderservice.Forwarder
	logger    *slog.Logger
}

// New подключается к брокеру и объявляет очередь заявок.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.ForwardURL == "" || cfg.ForwardSecret == "" {
		return nil, errors.New("forwarder: CONTACT_FORWARD_URL and CONTACT_FORWARD_SECRET are required")
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ContactExchange, rabbitmq.ContactQueues(cfg.ContactQueue), workers)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &App{
		conn:      conn,
		ch:        ch,
		queue:     cfg.ContactQueue,
		forwarder: forwarderservice.New(cfg.ForwardURL, cfg.ForwardSecret, cfg.ForwardTimeout, logger),
		logger:    logger,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx или потери соединения с брокером.
func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumerMessage(ctx, a.ch, a.queue, workers, a.forwarder.Forward, a.logger)
	if err != nil {
		a.logger.Error("failed to start contact consumer", sl.Err(err))
		return err
	}
	a.logger.Info("contact forwarder started", slog.String("queue", a.queue))

	closed := a.conn.NotifyClose(make(chan *amqp.Error, 1))
	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("contact forwarder shutting down gracefully")
	case amqpErr := <-closed:
		if amqpErr != nil {
			runErr = amqpErr
		}
		a.logger.Error("broker connection lost", sl.Err(runErr))
	}
	<-done

	if err := a.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return runErr
}
