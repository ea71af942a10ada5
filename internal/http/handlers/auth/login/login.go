// Package login реализует HTTP-обработчик входа: проверяет учётные данные,
// создаёт сессию и выставляет HttpOnly cookie с токеном.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/cookie"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Request структура входных данных для входа.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service описывает вход пользователя.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
}

// Handler обрабатывает POST /login.
type Handler struct {
	log     *slog.Logger
	service Service
	cookie  cookie.Config
}

// New создает обработчик входа.
func New(log *slog.Logger, service Service, c cookie.Config) *Handler {
	return &Handler{log: log, service: service, cookie: c}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, создаёт сессию на 7 дней и выставляет cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response "Пользователь и срок действия сессии"
// @Failure 400 {object} response.ErrorResponse "Не заполнены поля"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Info("login failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	h.cookie.Set(w, res.Token, res.ExpiresAt)
	log.Info("login success", slog.String("user_id", res.User.ID))
	response.OK(w, r, http.StatusOK, res)
}
