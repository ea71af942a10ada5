// Package create реализует HTTP-обработчик создания подписки пользователя на тариф.
// Создание активной подписки переводит прочие активные подписки пользователя в cancelled.
package create

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/subscription"
)

// Request входные данные для создания подписки. userId по умолчанию пользователь сессии.
type Request struct {
	UserID    string     `json:"userId"`
	PlanID    int        `json:"planId"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	EndsAt    *time.Time `json:"endsAt"`
}

// Service описывает создание подписки.
type Service interface {
	Create(ctx context.Context, in subscription.CreateInput) (*models.Subscription, error)
}

// Handler обрабатывает POST /subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать подписку
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body Request true "Подписка"
// @Success 201 {object} response.Response "Созданная подписка"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Чужой пользователь"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "Конфликт активных подписок"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}

	userID, err := middlewarectx.ResolveUserID(r.Context(), req.UserID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	sub, err := h.service.Create(r.Context(), subscription.CreateInput{
		UserID:    userID,
		PlanID:    req.PlanID,
		Status:    models.SubscriptionStatus(req.Status),
		StartedAt: req.StartedAt,
		EndsAt:    req.EndsAt,
	})
	if err != nil {
		log.Info("failed to create subscription", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("subscription created", slog.Int("id", sub.ID))
	response.OK(w, r, http.StatusCreated, map[string]any{"subscription": sub})
}
