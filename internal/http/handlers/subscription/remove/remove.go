// Package remove реализует HTTP-обработчик удаления подписки.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Service описывает чтение и удаление подписки.
type Service interface {
	Get(ctx context.Context, id int) (*models.Subscription, error)
	Remove(ctx context.Context, id int) error
}

// Handler обрабатывает DELETE /subscriptions/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить подписку
// @Tags Subscriptions
// @Produce json
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response "success: true"
// @Failure 403 {object} response.ErrorResponse "Чужая подписка"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /subscriptions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.ErrInvalidID)
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	if _, err := middlewarectx.ResolveUserID(r.Context(), sub.UserID); err != nil {
		response.Fail(w, r, err)
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		log.Error("failed to remove subscription", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("subscription removed", slog.Int("id", id))
	response.OK(w, r, http.StatusOK, map[string]any{"success": true})
}
