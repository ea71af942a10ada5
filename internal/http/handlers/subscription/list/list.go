// Package list реализует HTTP-обработчик списка подписок пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Service описывает список подписок.
type Service interface {
	List(ctx context.Context, f models.SubscriptionFilter) ([]models.Subscription, error)
}

// Handler обрабатывает GET /subscriptions?userId=&status=&limit=&offset=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Подписки пользователя сессии, новые первыми.
// @Tags Subscriptions
// @Produce json
// @Param userId query string false "ID пользователя, только свой"
// @Param status query string false "active, cancelled или expired"
// @Param limit query int false "Размер страницы, не больше 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Подписки"
// @Failure 400 {object} response.ErrorResponse "Неверный статус"
// @Failure 403 {object} response.ErrorResponse "Чужой пользователь"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

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

	f := models.SubscriptionFilter{UserID: userID}
	if st := q.Get("status"); st != "" {
		status := models.SubscriptionStatus(st)
		f.Status = &status
	}
	// Некорректные limit и offset заменяются значениями по умолчанию.
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	subs, err := h.service.List(r.Context(), f)
	if err != nil {
		log.Info("failed to list subscriptions", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}

	response.OK(w, r, http.StatusOK, map[string]any{"subscriptions": subs})
}
