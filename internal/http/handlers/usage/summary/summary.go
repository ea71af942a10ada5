// Package summary реализует HTTP-обработчик месячной сводки использования сервисов.
package summary

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Service описывает построение сводки.
type Service interface {
	MonthlySummary(ctx context.Context, userID, monthKey string) ([]models.UsageSummary, error)
}

// Handler обрабатывает GET /usage/summary?userId=&month=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка использования за месяц
// @Description По одной записи на каждый сервис каталога, включая неиспользованные.
// @Tags Usage
// @Produce json
// @Param userId query string false "ID пользователя, только свой"
// @Param month query string false "Месяц YYYY-MM, по умолчанию текущий"
// @Success 200 {object} response.Response "Сводка"
// @Failure 400 {object} response.ErrorResponse "Неверный месяц"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Чужой пользователь"
// @Router /usage/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.summary"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	userID, err := middlewarectx.ResolveUserID(r.Context(), q.Get("userId"))
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	summary, err := h.service.MonthlySummary(r.Context(), userID, q.Get("month"))
	if err != nil {
		log.Info("failed to build usage summary", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if summary == nil {
		summary = []models.UsageSummary{}
	}

	response.OK(w, r, http.StatusOK, map[string]any{"summary": summary})
}
