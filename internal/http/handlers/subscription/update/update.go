// Package update реализует HTTP-обработчик частичного обновления подписки.
package update

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Request обновляемые поля. endsAt можно сбросить, передав null.
type Request struct {
	PlanID *int                `json:"planId"`
	Status *string             `json:"status"`
	EndsAt models.OptionalTime `json:"endsAt"`
}

// Service описывает чтение и обновление подписки.
type Service interface {
	Get(ctx context.Context, id int) (*models.Subscription, error)
	Update(ctx context.Context, id int, upd models.SubscriptionUpdate) (*models.Subscription, error)
}

// Handler обрабатывает PUT /subscriptions/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновить подписку
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path int true "ID подписки"
// @Param request body Request true "Поля для обновления"
// @Success 200 {object} response.Response "Обновлённая подписка"
// @Failure 400 {object} response.ErrorResponse "Нет полей или неверный статус"
// @Failure 403 {object} response.ErrorResponse "Чужая подписка"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /subscriptions/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.ErrInvalidID)
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}

	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	if _, err := middlewarectx.ResolveUserID(r.Context(), current.UserID); err != nil {
		log.Warn("update of foreign subscription rejected", slog.Int("id", id))
		response.Fail(w, r, err)
		return
	}

	upd := models.SubscriptionUpdate{PlanID: req.PlanID, EndsAt: req.EndsAt}
	if req.Status != nil {
		st := models.SubscriptionStatus(*req.Status)
		upd.Status = &st
	}

	sub, err := h.service.Update(r.Context(), id, upd)
	if err != nil {
		log.Info("failed to update subscription", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("subscription updated", slog.Int("id", id))
	response.OK(w, r, http.StatusOK, map[string]any{"subscription": sub})
}
