// Package overview реализует HTTP-обработчик сводки дашборда: действующий тариф и использование.
package overview

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

// Service описывает построение сводки дашборда.
type Service interface {
	Overview(ctx context.Context, userID, monthKey string) (*models.UsageOverview, error)
}

// Handler обрабатывает GET /usage/overview?month=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка дашборда
// @Description Активная подписка и тариф (могут быть null) и использование сервисов за месяц.
// @Tags Usage
// @Produce json
// @Param month query string false "Месяц YYYY-MM, по умолчанию текущий"
// @Success 200 {object} response.Response "Сводка"
// @Failure 400 {object} response.ErrorResponse "Неверный месяц"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /usage/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.overview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := middlewarectx.ResolveUserID(r.Context(), "")
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	ov, err := h.service.Overview(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		log.Info("failed to build overview", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if ov.Services == nil {
		ov.Services = []models.UsageSummary{}
	}

	response.OK(w, r, http.StatusOK, ov)
}
