// Package health реализует проверку доступности зависимостей сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
)

const (
	StateUp       = "up"
	StateDown     = "down"
	StateDisabled = "disabled"
)

const pingTimeout = 2 * time.Second

// Pinger проверяет соединение с зависимостью.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response состояние сервиса.
type Response struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Handler обрабатывает GET /health. Кэш необязателен: nil означает disabled.
type Handler struct {
	log   *slog.Logger
	db    Pinger
	cache Pinger
}

// New создает обработчик.
func New(log *slog.Logger, db Pinger, cache Pinger) *Handler {
	return &Handler{log: log, db: db, cache: cache}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} Response "Сервис доступен"
// @Failure 503 {object} Response "База данных или кэш недоступны"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := Response{Database: h.check(ctx, "database", h.db), Redis: h.check(ctx, "redis", h.cache)}
	resp.OK = resp.Database == StateUp && resp.Redis != StateDown

	if resp.OK {
		render.Status(r, http.StatusOK)
	} else {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}

func (h *Handler) check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return StateDisabled
	}
	if err := p.Ping(ctx); err != nil {
		h.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
		return StateDown
	}
	return StateUp
}
