// Package profile реализует HTTP-обработчики профиля пользователя.
// Профиль доступен только владельцу сессии.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// UpdateRequest изменения профиля. image: null удаляет аватар.
type UpdateRequest struct {
	Name  *string                 `json:"name"`
	Image models.Optional[string] `json:"image"`
}

// Service описывает работу с профилем.
type Service interface {
	Get(ctx context.Context, id string) (*models.PublicUser, error)
	Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.PublicUser, error)
}

// Handlers группирует обработчики /users/{id}.
type Handlers struct {
	log     *slog.Logger
	service Service
}

// New создает обработчики профиля.
func New(log *slog.Logger, service Service) *Handlers {
	return &Handlers{log: log, service: service}
}

// Get godoc
// @Summary Профиль пользователя
// @Tags Users
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response "Профиль"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Чужой профиль"
// @Failure 404 {object} response.ErrorResponse "Не найден"
// @Router /users/{id} [get]
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := middlewarectx.ResolveUserID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"user": user})
}

// Update godoc
// @Summary Изменить профиль
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "ID пользователя"
// @Param request body UpdateRequest true "Изменения"
// @Success 200 {object} response.Response "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Чужой профиль"
// @Router /users/{id} [put]
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.profile.Update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := middlewarectx.ResolveUserID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	var req UpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}

	user, err := h.service.Update(r.Context(), id, models.ProfileUpdate{Name: req.Name, Image: req.Image})
	if err != nil {
		log.Info("failed to update profile", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("profile updated", slog.String("user_id", id))
	response.OK(w, r, http.StatusOK, map[string]any{"success": true, "user": user})
}
