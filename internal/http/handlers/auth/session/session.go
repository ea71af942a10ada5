// Package session реализует чтение и завершение текущей сессии.
package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/cookie"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
)

// Service описывает завершение сессии.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает GET и DELETE /session.
type Handler struct {
	log     *slog.Logger
	service Service
	cookie  cookie.Config
}

// New создает обработчик сессии.
func New(log *slog.Logger, service Service, c cookie.Config) *Handler {
	return &Handler{log: log, service: service, cookie: c}
}

// Get godoc
// @Summary Текущая сессия
// @Description Возвращает пользователя сессии или null, если сессии нет.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Пользователь или null"
// @Router /auth/session [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, http.StatusOK, map[string]any{"user": middlewarectx.UserFromContext(r.Context())})
}

// Delete godoc
// @Summary Выход
// @Description Удаляет сессию и cookie. Повторный вызов не является ошибкой.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "success: true"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/session [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session.Delete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tok := middlewarectx.TokenFromContext(r.Context())
	if tok == "" {
		tok = middlewarectx.TokenFromRequest(r, h.cookie.Name)
	}
	if err := h.service.Logout(r.Context(), tok); err != nil {
		log.Error("logout failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	h.cookie.Clear(w)
	response.OK(w, r, http.StatusOK, map[string]any{"success": true})
}
